package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mkrutov/techstore/internal/domain"
)

type CartRepository interface {
	// GetOrCreateOpenCart returns the owner's open cart, creating an empty
	// one if none exists. Safe under concurrent first access: at most one
	// open cart is ever created per owner.
	GetOrCreateOpenCart(ctx context.Context, ownerID string) (domain.Cart, error)

	// UpsertLine sets the line for (cartID, productID) to an absolute
	// quantity, inserting the line if absent.
	UpsertLine(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error

	// DeleteLine removes the line if present, reporting whether it existed.
	DeleteLine(ctx context.Context, cartID, productID uuid.UUID) (bool, error)

	// CommitCart transitions an open cart to committed and stamps it.
	// Fails with domain.ErrNotFound if the cart is missing or not open.
	CommitCart(ctx context.Context, cartID uuid.UUID) (time.Time, error)

	// ListOrders returns the owner's committed carts, newest first.
	ListOrders(ctx context.Context, ownerID string) ([]domain.Cart, error)
}
