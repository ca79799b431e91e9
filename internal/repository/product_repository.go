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
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type productRepository struct {
	db querier
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{db: pool}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{db: tx}
}

const productColumns = `id, name, description, price_amount, price_currency, available, category_id, created_at`

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, productID)

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("scanProduct: %w", err)
	}

	return product, nil
}

func (r *productRepository) ListProducts(ctx context.Context, categoryID *uuid.UUID) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	args := []any{}
	if categoryID != nil {
		query = `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY name`
		args = append(args, *categoryID)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProduct: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Name == "" {
		return domain.Product{}, fmt.Errorf("product name is empty")
	}
	if product.Available < 0 {
		return domain.Product{}, fmt.Errorf("available[%d]: %w", product.Available, domain.ErrInvalidQuantity)
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price_amount, price_currency, available, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		product.Name, product.Description,
		product.Price.Amount, product.Price.Currency.String(),
		product.Available, product.CategoryID).
		Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert products: %w", err)
	}

	return product, nil
}

func (r *productRepository) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	if name == "" {
		return domain.Category{}, fmt.Errorf("category name is empty")
	}

	category := domain.Category{Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name).
		Scan(&category.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert categories: %w", err)
	}

	return category, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		product      domain.Product
		priceAmount  decimal.Decimal
		currencyCode string
	)

	err := row.Scan(&product.ID, &product.Name, &product.Description,
		&priceAmount, &currencyCode, &product.Available, &product.CategoryID, &product.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	product.Price = domain.Money{Amount: priceAmount, Currency: parsedCurrency}
	return product, nil
}
