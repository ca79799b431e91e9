package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
)

type stockRepository struct {
	db querier
}

func NewStock(pool *pgxpool.Pool) port.StockLedger {
	return &stockRepository{db: pool}
}

func NewStockWithTx(tx pgx.Tx) port.StockLedger {
	return &stockRepository{db: tx}
}

func (r *stockRepository) GetAvailable(ctx context.Context, productID uuid.UUID) (int32, error) {
	var available int32
	err := r.db.QueryRow(ctx,
		`SELECT available FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("select available: %w", err)
	}

	return available, nil
}

func (r *stockRepository) LockAvailable(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int32, error) {
	// Stable lock order keeps concurrent checkouts from deadlocking.
	rows, err := r.db.Query(ctx,
		`SELECT id, available FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		productIDs)
	if err != nil {
		return nil, fmt.Errorf("select for update: %w", err)
	}
	defer rows.Close()

	available := make(map[uuid.UUID]int32, len(productIDs))
	for rows.Next() {
		var (
			id  uuid.UUID
			qty int32
		)
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan available: %w", err)
		}
		available[id] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return available, nil
}

func (r *stockRepository) Decrement(ctx context.Context, productID uuid.UUID, amount int32) error {
	if amount < 1 {
		return fmt.Errorf("amount[%d]: %w", amount, domain.ErrInvalidQuantity)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE products SET available = available - $2
		 WHERE id = $1 AND available >= $2`, productID, amount)
	if err != nil {
		return fmt.Errorf("update available: %w", err)
	}

	if tag.RowsAffected() == 0 {
		available, err := r.GetAvailable(ctx, productID)
		if err != nil {
			return fmt.Errorf("GetAvailable: %w", err)
		}
		return domain.InsufficientStockError{ProductID: productID, Available: available}
	}

	return nil
}
