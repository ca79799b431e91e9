package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkrutov/techstore/internal/domain"
)

type ProductRepository interface {
	// GetProduct fails with domain.ErrNotFound for an unknown ID.
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	// ListProducts returns the catalog, optionally narrowed to a category.
	ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error)

	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	CreateCategory(ctx context.Context, name string) (domain.Category, error)
}

// StockLedger is the read/write view of per-product available quantity.
// Reads are never cached: every call reflects the latest committed value.
type StockLedger interface {
	// GetAvailable fails with domain.ErrNotFound for an unknown product.
	GetAvailable(ctx context.Context, productID uuid.UUID) (int32, error)

	// LockAvailable reads the available quantity of every given product
	// under a row lock, in a stable order. Meant to run inside a
	// transaction so checkout's validate and commit phases serialize with
	// other writers of the same rows.
	LockAvailable(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int32, error)

	// Decrement reduces available stock by amount. The guard against
	// over-decrement is re-checked here even though callers validate
	// first, closing the race window at commit time. Fails with
	// domain.InsufficientStockError or domain.ErrNotFound.
	Decrement(ctx context.Context, productID uuid.UUID, amount int32) error
}
