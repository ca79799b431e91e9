package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound reports an unknown product or cart.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCart reports a checkout attempt with zero lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidQuantity reports a requested quantity below zero.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// InsufficientStockError reports a requested quantity above the product's
// available stock. Available carries the value at the moment of the check
// so callers can render it.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int32
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d available", e.ProductID, e.Available)
}
