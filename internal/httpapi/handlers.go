package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mkrutov/techstore/internal/domain"
)

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoneyJSON(m domain.Money) moneyJSON {
	return moneyJSON{
		Amount:   m.Amount.StringFixed(2),
		Currency: m.Currency.String(),
	}
}

type productJSON struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       moneyJSON `json:"price"`
	Available   int32     `json:"available"`
	CategoryID  uuid.UUID `json:"category_id"`
}

func toProductJSON(p domain.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       toMoneyJSON(p.Price),
		Available:   p.Available,
		CategoryID:  p.CategoryID,
	}
}

type cartLineJSON struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice moneyJSON `json:"unit_price"`
	Quantity  int32     `json:"quantity"`
	LineTotal moneyJSON `json:"line_total"`
}

type cartJSON struct {
	ID        uuid.UUID      `json:"id"`
	Status    string         `json:"status"`
	Lines     []cartLineJSON `json:"lines"`
	Total     moneyJSON      `json:"total"`
	ItemCount int32          `json:"item_count"`
}

func toCartJSON(summary domain.CartSummary) cartJSON {
	out := cartJSON{
		ID:        summary.CartID,
		Status:    string(summary.Status),
		Lines:     []cartLineJSON{},
		Total:     toMoneyJSON(summary.Total),
		ItemCount: summary.ItemCount,
	}
	for _, line := range summary.Lines {
		out.Lines = append(out.Lines, cartLineJSON{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: toMoneyJSON(line.UnitPrice),
			Quantity:  line.Quantity,
			LineTotal: toMoneyJSON(line.LineTotal),
		})
	}
	return out
}

type orderJSON struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	ItemCount   int32      `json:"item_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CommittedAt *time.Time `json:"committed_at,omitempty"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid category id"})
			return
		}
		categoryID = &id
	}

	products, err := s.products.ListProducts(r.Context(), categoryID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid product id"})
		return
	}

	product, err := s.products.GetProduct(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(product))
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.GetOrCreateOpenCart(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeCart(w, r, cart)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID uuid.UUID `json:"product_id"`
		Delta     int32     `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid input"})
		return
	}

	cart, err := s.carts.AddItem(r.Context(), ownerFrom(r), req.ProductID, req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeCart(w, r, cart)
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["productID"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid product id"})
		return
	}

	var req struct {
		Quantity int32 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid input"})
		return
	}

	cart, err := s.carts.SetQuantity(r.Context(), ownerFrom(r), productID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeCart(w, r, cart)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["productID"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid product id"})
		return
	}

	cart, err := s.carts.RemoveItem(r.Context(), ownerFrom(r), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeCart(w, r, cart)
}

func (s *Server) checkoutCart(w http.ResponseWriter, r *http.Request) {
	order, err := s.checkout.Checkout(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderJSON{
		ID:          order.ID,
		Status:      string(order.Status),
		ItemCount:   order.ItemCount(),
		CreatedAt:   order.CreatedAt,
		CommittedAt: order.CommittedAt,
	})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.checkout.ListOrders(r.Context(), ownerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]orderJSON, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderJSON{
			ID:          order.ID,
			Status:      string(order.Status),
			ItemCount:   order.ItemCount(),
			CreatedAt:   order.CreatedAt,
			CommittedAt: order.CommittedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request, cart domain.Cart) {
	summary, err := s.carts.Summarize(r.Context(), cart)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartJSON(summary))
}
