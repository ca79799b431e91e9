package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
	"github.com/mkrutov/techstore/internal/service"
	"github.com/rs/zerolog/log"
)

// Server exposes the cart and catalog services as a JSON API. It is the
// transport stand-in for the storefront UI.
type Server struct {
	carts    *service.CartService
	checkout *service.CheckoutService
	products port.ProductRepository
}

func NewServer(carts *service.CartService, checkout *service.CheckoutService, products port.ProductRepository) *Server {
	return &Server{
		carts:    carts,
		checkout: checkout,
		products: products,
	}
}

// Router sets up all the routes for the application.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger)

	// Catalog routes
	router.HandleFunc("/products", s.listProducts).Methods("GET")
	router.HandleFunc("/products/{id}", s.getProduct).Methods("GET")

	// Session routes
	session := router.PathPrefix("/").Subrouter()
	session.Use(SessionMiddleware)
	session.HandleFunc("/cart", s.getCart).Methods("GET")
	session.HandleFunc("/cart/items", s.addItem).Methods("POST")
	session.HandleFunc("/cart/items/{productID}", s.setQuantity).Methods("PUT")
	session.HandleFunc("/cart/items/{productID}", s.removeItem).Methods("DELETE")
	session.HandleFunc("/cart/checkout", s.checkoutCart).Methods("POST")
	session.HandleFunc("/orders", s.listOrders).Methods("GET")

	return router
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	var stockErr domain.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
		})
	case errors.Is(err, domain.ErrEmptyCart):
		writeJSON(w, http.StatusConflict, map[string]any{"error": "cart is empty"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid quantity"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}
