package port

import "context"

// Repos bundles the repositories bound to one backing connection or
// transaction.
type Repos struct {
	Carts    CartRepository
	Products ProductRepository
	Stock    StockLedger
}

// Store hands out repositories and scopes work to a single transaction.
type Store interface {
	// Repos returns repositories bound to the shared pool. Each call is an
	// independent request/response unit.
	Repos() Repos

	// WithinTx runs fn with repositories bound to one transaction. The
	// transaction commits if fn returns nil and rolls back otherwise, so
	// multi-statement work is applied fully or not at all.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
