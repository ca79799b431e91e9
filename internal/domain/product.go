package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID   uuid.UUID
	Name string
}

// Product is a catalog entry. Available is the single source of truth for
// stock: it is decremented only by a committed checkout, never by cart
// mutation.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       Money
	Available   int32
	CategoryID  uuid.UUID

	CreatedAt time.Time
}
