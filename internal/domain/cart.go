package domain

import (
	"time"

	"github.com/google/uuid"
)

type CartStatus string

const (
	CartStatusOpen      CartStatus = "open"
	CartStatusCommitted CartStatus = "committed"
)

// Cart is a user's draft order while open and the permanent order record
// once committed. An owner has at most one open cart at a time.
type Cart struct {
	ID      uuid.UUID
	OwnerID string
	Status  CartStatus
	Lines   []CartLine

	CreatedAt   time.Time
	CommittedAt *time.Time
}

// CartLine pairs a product with a quantity. Quantity is always >= 1;
// a line dropping below 1 is deleted, never stored at zero. Price is not
// cached on the line, it is read from the product at display time.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int32

	CreatedAt time.Time
}

// QuantityOf returns the quantity of the line for productID, or 0 if the
// cart has no such line.
func (c Cart) QuantityOf(productID uuid.UUID) int32 {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// ItemCount is the sum of quantities across all lines.
func (c Cart) ItemCount() int32 {
	var total int32
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}
