package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/currency"
)

// CartService implements the cart operations: add/set/remove line items
// validated against live stock, plus totals and counts. The owner is an
// explicit argument on every call; there is no ambient current-user state.
type CartService struct {
	store           port.Store
	defaultCurrency currency.Unit
}

func NewCartService(store port.Store, defaultCurrency currency.Unit) *CartService {
	return &CartService{
		store:           store,
		defaultCurrency: defaultCurrency,
	}
}

func (s *CartService) GetOrCreateOpenCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	return s.store.Repos().Carts.GetOrCreateOpenCart(ctx, ownerID)
}

// AddItem applies a signed quantity delta to the owner's open cart line for
// productID. A resulting quantity below 1 removes the line; otherwise the
// new quantity is validated against live stock before the line is upserted.
// On InsufficientStock the cart is left unchanged.
func (s *CartService) AddItem(ctx context.Context, ownerID string, productID uuid.UUID, delta int32) (domain.Cart, error) {
	return s.mutateLine(ctx, ownerID, productID, func(current int32) int32 {
		return current + delta
	})
}

// SetQuantity overwrites the line quantity with an absolute value. Zero
// removes the line; a negative value fails with ErrInvalidQuantity and the
// prior quantity is retained.
func (s *CartService) SetQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int32) (domain.Cart, error) {
	if quantity < 0 {
		return domain.Cart{}, fmt.Errorf("quantity[%d]: %w", quantity, domain.ErrInvalidQuantity)
	}

	return s.mutateLine(ctx, ownerID, productID, func(int32) int32 {
		return quantity
	})
}

// RemoveItem deletes the line unconditionally; removing an absent line is
// not an error.
func (s *CartService) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (domain.Cart, error) {
	var cart domain.Cart

	err := s.store.WithinTx(ctx, func(r port.Repos) error {
		var err error
		cart, err = r.Carts.GetOrCreateOpenCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.GetOrCreateOpenCart: %w", err)
		}

		if _, err := r.Carts.DeleteLine(ctx, cart.ID, productID); err != nil {
			return fmt.Errorf("carts.DeleteLine: %w", err)
		}

		cart, err = r.Carts.GetOrCreateOpenCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.GetOrCreateOpenCart: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	log.Debug().Str("owner", ownerID).Stringer("product", productID).Msg("cart line removed")
	return cart, nil
}

func (s *CartService) mutateLine(ctx context.Context, ownerID string, productID uuid.UUID, next func(current int32) int32) (domain.Cart, error) {
	var cart domain.Cart

	err := s.store.WithinTx(ctx, func(r port.Repos) error {
		var err error
		cart, err = r.Carts.GetOrCreateOpenCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.GetOrCreateOpenCart: %w", err)
		}

		newQuantity := next(cart.QuantityOf(productID))

		if newQuantity < 1 {
			if _, err := r.Carts.DeleteLine(ctx, cart.ID, productID); err != nil {
				return fmt.Errorf("carts.DeleteLine: %w", err)
			}
		} else {
			// Always validated against live stock, never a session snapshot.
			available, err := r.Stock.GetAvailable(ctx, productID)
			if err != nil {
				return fmt.Errorf("stock.GetAvailable: %w", err)
			}
			if newQuantity > available {
				return domain.InsufficientStockError{ProductID: productID, Available: available}
			}

			if err := r.Carts.UpsertLine(ctx, cart.ID, productID, newQuantity); err != nil {
				return fmt.Errorf("carts.UpsertLine: %w", err)
			}
		}

		cart, err = r.Carts.GetOrCreateOpenCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.GetOrCreateOpenCart: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	return cart, nil
}

// ComputeTotal sums price times quantity across the cart's lines, with
// prices read live from the catalog. An empty cart totals zero in the
// default currency.
func (s *CartService) ComputeTotal(ctx context.Context, cart domain.Cart) (domain.Money, error) {
	summary, err := s.summarize(ctx, s.store.Repos().Products, cart)
	if err != nil {
		return domain.Money{}, err
	}
	return summary.Total, nil
}

// CountItems is the sum of line quantities, 0 for an empty cart.
func (s *CartService) CountItems(cart domain.Cart) int32 {
	return cart.ItemCount()
}

// Summarize builds the display view of a cart: every line joined with its
// product at the current price, plus total and item count.
func (s *CartService) Summarize(ctx context.Context, cart domain.Cart) (domain.CartSummary, error) {
	return s.summarize(ctx, s.store.Repos().Products, cart)
}

func (s *CartService) summarize(ctx context.Context, products port.ProductRepository, cart domain.Cart) (domain.CartSummary, error) {
	summary := domain.CartSummary{
		CartID:    cart.ID,
		Status:    cart.Status,
		Total:     domain.Money{Currency: s.defaultCurrency},
		ItemCount: cart.ItemCount(),
	}

	for _, line := range cart.Lines {
		product, err := products.GetProduct(ctx, line.ProductID)
		if err != nil {
			return domain.CartSummary{}, fmt.Errorf("products.GetProduct: %w", err)
		}

		lineTotal := product.Price.Mul(line.Quantity)
		summary.Lines = append(summary.Lines, domain.SummaryLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
		})
		summary.Total = summary.Total.Add(lineTotal)
	}

	if len(summary.Lines) > 0 {
		summary.Total.Currency = summary.Lines[0].UnitPrice.Currency
	}

	return summary, nil
}
