package repository_test

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_catalog.up.sql",
			"../migrations/02_carts.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func createProduct(ctx context.Context, products port.ProductRepository, available int32) (domain.Product, error) {
	category, err := products.CreateCategory(ctx, "Видеокарты")
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.CreateCategory: %w", err)
	}

	product, err := products.CreateProduct(ctx, domain.Product{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(6),
		Price: domain.Money{
			Amount:   decimal.NewFromFloat(gofakeit.Price(100, 100000)).Round(2),
			Currency: currency.RUB,
		},
		Available:  available,
		CategoryID: category.ID,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.CreateProduct: %w", err)
	}

	return product, nil
}

func truncateCarts(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE TABLE cart_items, carts CASCADE")
	return err
}
