package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
)

type cartRepository struct {
	db querier
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) GetOrCreateOpenCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	// Single idempotent upsert against the one-open-cart partial index;
	// concurrent first access resolves to the same row.
	_, err := r.db.Exec(ctx,
		`INSERT INTO carts (owner_id) VALUES ($1)
		 ON CONFLICT (owner_id) WHERE status = 'open' DO NOTHING`, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("insert cart: %w", err)
	}

	var cart domain.Cart
	err = r.db.QueryRow(ctx,
		`SELECT id, owner_id, status, created_at, committed_at
		 FROM carts WHERE owner_id = $1 AND status = 'open'`, ownerID).
		Scan(&cart.ID, &cart.OwnerID, &cart.Status, &cart.CreatedAt, &cart.CommittedAt)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	cart.Lines, err = r.selectLines(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("selectLines: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) UpsertLine(ctx context.Context, cartID, productID uuid.UUID, quantity int32) error {
	if quantity < 1 {
		return fmt.Errorf("quantity[%d]: %w", quantity, domain.ErrInvalidQuantity)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		cartID, productID, quantity)
	if err != nil {
		return fmt.Errorf("upsert cart_items: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteLine(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return false, fmt.Errorf("delete cart_items: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) CommitCart(ctx context.Context, cartID uuid.UUID) (time.Time, error) {
	var committedAt time.Time
	err := r.db.QueryRow(ctx,
		`UPDATE carts SET status = 'committed', committed_at = NOW()
		 WHERE id = $1 AND status = 'open'
		 RETURNING committed_at`, cartID).Scan(&committedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, fmt.Errorf("open cart[%s]: %w", cartID, domain.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("update carts: %w", err)
	}

	return committedAt, nil
}

func (r *cartRepository) ListOrders(ctx context.Context, ownerID string) ([]domain.Cart, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, status, created_at, committed_at
		 FROM carts WHERE owner_id = $1 AND status = 'committed'
		 ORDER BY committed_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("select carts: %w", err)
	}
	defer rows.Close()

	var orders []domain.Cart
	for rows.Next() {
		var cart domain.Cart
		if err := rows.Scan(&cart.ID, &cart.OwnerID, &cart.Status, &cart.CreatedAt, &cart.CommittedAt); err != nil {
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		orders = append(orders, cart)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	for i := range orders {
		orders[i].Lines, err = r.selectLines(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("selectLines: %w", err)
		}
	}

	return orders, nil
}

func (r *cartRepository) selectLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := r.db.Query(ctx,
		`SELECT product_id, quantity, created_at
		 FROM cart_items WHERE cart_id = $1
		 ORDER BY created_at, product_id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart_items: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lines, nil
}
