package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
	"github.com/mkrutov/techstore/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stockRepositorySuite struct {
	suite.Suite

	stock    port.StockLedger
	products port.ProductRepository
	pool     *pgxpool.Pool
}

func TestStockRepositorySuite(t *testing.T) {
	suite.Run(t, new(stockRepositorySuite))
}

func (suite *stockRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	_, connStr, err := startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.stock = repository.NewStock(suite.pool)
	suite.products = repository.NewProduct(suite.pool)
}

func (suite *stockRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
}

func (suite *stockRepositorySuite) TestGetAvailable() {
	t := suite.T()
	ctx := t.Context()

	product, err := createProduct(ctx, suite.products, 7)
	require.NoError(t, err)

	available, err := suite.stock.GetAvailable(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(7), available)

	_, err = suite.stock.GetAvailable(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *stockRepositorySuite) TestDecrement() {
	t := suite.T()
	ctx := t.Context()

	product, err := createProduct(ctx, suite.products, 10)
	require.NoError(t, err)

	require.NoError(t, suite.stock.Decrement(ctx, product.ID, 4))

	available, err := suite.stock.GetAvailable(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(6), available)

	// over-decrement fails and leaves the value unchanged
	err = suite.stock.Decrement(ctx, product.ID, 7)
	var stockErr domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, product.ID, stockErr.ProductID)
	assert.Equal(t, int32(6), stockErr.Available)

	available, err = suite.stock.GetAvailable(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(6), available)

	// draining to zero is allowed, below zero is not
	require.NoError(t, suite.stock.Decrement(ctx, product.ID, 6))
	err = suite.stock.Decrement(ctx, product.ID, 1)
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int32(0), stockErr.Available)
}

func (suite *stockRepositorySuite) TestDecrement_UnknownProduct() {
	t := suite.T()
	ctx := t.Context()

	err := suite.stock.Decrement(ctx, uuid.New(), 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *stockRepositorySuite) TestDecrement_InvalidAmount() {
	t := suite.T()
	ctx := t.Context()

	product, err := createProduct(ctx, suite.products, 3)
	require.NoError(t, err)

	err = suite.stock.Decrement(ctx, product.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	available, err := suite.stock.GetAvailable(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), available)
}

func (suite *stockRepositorySuite) TestLockAvailable() {
	t := suite.T()
	ctx := t.Context()

	first, err := createProduct(ctx, suite.products, 5)
	require.NoError(t, err)
	second, err := createProduct(ctx, suite.products, 9)
	require.NoError(t, err)

	available, err := suite.stock.LockAvailable(ctx, []uuid.UUID{first.ID, second.ID, uuid.New()})
	require.NoError(t, err)

	// unknown products are simply absent from the result
	require.Len(t, available, 2)
	assert.Equal(t, int32(5), available[first.ID])
	assert.Equal(t, int32(9), available[second.ID])
}
