package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
	"github.com/rs/zerolog/log"
)

// CheckoutService converts an open cart into a committed order while
// debiting stock. The whole operation runs inside one transaction: either
// every line's stock is decremented and the cart is committed, or nothing
// changes.
type CheckoutService struct {
	store port.Store
}

func NewCheckoutService(store port.Store) *CheckoutService {
	return &CheckoutService{store: store}
}

// Checkout re-validates every line against live stock under row locks,
// then decrements stock per line and flips the cart to committed. Fails
// with ErrEmptyCart on zero lines and InsufficientStockError when any line
// exceeds current stock; on any failure no stock changes and the cart
// stays open.
func (s *CheckoutService) Checkout(ctx context.Context, ownerID string) (domain.Cart, error) {
	var committed domain.Cart

	err := s.store.WithinTx(ctx, func(r port.Repos) error {
		cart, err := r.Carts.GetOrCreateOpenCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.GetOrCreateOpenCart: %w", err)
		}

		if len(cart.Lines) == 0 {
			return domain.ErrEmptyCart
		}

		// Phase 1: lock every product row and validate all lines before
		// touching any stock.
		productIDs := make([]uuid.UUID, 0, len(cart.Lines))
		for _, line := range cart.Lines {
			productIDs = append(productIDs, line.ProductID)
		}
		sort.Slice(productIDs, func(i, j int) bool {
			return productIDs[i].String() < productIDs[j].String()
		})

		available, err := r.Stock.LockAvailable(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("stock.LockAvailable: %w", err)
		}

		for _, line := range cart.Lines {
			got, ok := available[line.ProductID]
			if !ok {
				return fmt.Errorf("product[%s]: %w", line.ProductID, domain.ErrNotFound)
			}
			if line.Quantity > got {
				return domain.InsufficientStockError{ProductID: line.ProductID, Available: got}
			}
		}

		// Phase 2: debit every line and commit the cart. A failure here
		// rolls the whole transaction back.
		for _, line := range cart.Lines {
			if err := r.Stock.Decrement(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("stock.Decrement: %w", err)
			}
		}

		committedAt, err := r.Carts.CommitCart(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("carts.CommitCart: %w", err)
		}

		cart.Status = domain.CartStatusCommitted
		cart.CommittedAt = &committedAt
		committed = cart
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	log.Info().
		Str("owner", ownerID).
		Stringer("cart", committed.ID).
		Int32("items", committed.ItemCount()).
		Msg("cart checked out")

	return committed, nil
}

// ListOrders returns the owner's committed carts, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, ownerID string) ([]domain.Cart, error) {
	return s.store.Repos().Carts.ListOrders(ctx, ownerID)
}
