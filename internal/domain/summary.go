package domain

import "github.com/google/uuid"

// SummaryLine is a cart line joined with its product at current prices.
type SummaryLine struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice Money
	Quantity  int32
	LineTotal Money
}

// CartSummary is the display view of a cart: lines priced live from the
// catalog, plus the running total and item count.
type CartSummary struct {
	CartID    uuid.UUID
	Status    CartStatus
	Lines     []SummaryLine
	Total     Money
	ItemCount int32
}
