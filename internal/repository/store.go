package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkrutov/techstore/internal/port"
)

// Store implements port.Store over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Repos() port.Repos {
	return port.Repos{
		Carts:    NewCart(s.pool),
		Products: NewProduct(s.pool),
		Stock:    NewStock(s.pool),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r port.Repos) error) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(port.Repos{
			Carts:    NewCartWithTx(tx),
			Products: NewProductWithTx(tx),
			Stock:    NewStockWithTx(tx),
		})
	})
}
