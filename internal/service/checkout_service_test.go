package service_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/service"
	"github.com/mkrutov/techstore/internal/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_EmptyCart(t *testing.T) {
	ctx := t.Context()

	store := storetest.New()
	checkout := service.NewCheckoutService(store)

	_, err := checkout.Checkout(ctx, gofakeit.UUID())
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckout_Success(t *testing.T) {
	ctx := t.Context()

	store := storetest.New()
	carts := newCartService(store)
	checkout := service.NewCheckoutService(store)

	first := seedProduct(store, 10, "100.00")
	second := seedProduct(store, 4, "50.00")
	ownerID := gofakeit.UUID()

	_, err := carts.AddItem(ctx, ownerID, first.ID, 3)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, ownerID, second.ID, 4)
	require.NoError(t, err)

	order, err := checkout.Checkout(ctx, ownerID)
	require.NoError(t, err)

	assert.Equal(t, domain.CartStatusCommitted, order.Status)
	require.NotNil(t, order.CommittedAt)

	// every line's stock decreased by exactly its quantity
	assert.Equal(t, int32(7), store.Available(first.ID))
	assert.Equal(t, int32(0), store.Available(second.ID))

	orders, err := checkout.ListOrders(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestCheckout_InsufficientStock_NoPartialDebit(t *testing.T) {
	ctx := t.Context()

	store := storetest.New()
	carts := newCartService(store)
	checkout := service.NewCheckoutService(store)

	plenty := seedProduct(store, 10, "100.00")
	scarce := seedProduct(store, 2, "50.00")
	ownerID := gofakeit.UUID()

	_, err := carts.AddItem(ctx, ownerID, plenty.ID, 1)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, ownerID, scarce.ID, 2)
	require.NoError(t, err)

	// stock drops after the items were added
	require.NoError(t, store.Repos().Stock.Decrement(ctx, scarce.ID, 1))

	_, err = checkout.Checkout(ctx, ownerID)
	var stockErr domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce.ID, stockErr.ProductID)
	assert.Equal(t, int32(1), stockErr.Available)

	// all-or-nothing: nothing was debited
	assert.Equal(t, int32(10), store.Available(plenty.ID))
	assert.Equal(t, int32(1), store.Available(scarce.ID))

	cart, err := carts.GetOrCreateOpenCart(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartStatusOpen, cart.Status)
	assert.Len(t, cart.Lines, 2)
}

func TestCheckout_CommitFailureRollsBackDebits(t *testing.T) {
	ctx := t.Context()

	store := storetest.New()
	carts := newCartService(store)
	checkout := service.NewCheckoutService(store)

	product := seedProduct(store, 5, "100.00")
	ownerID := gofakeit.UUID()

	_, err := carts.AddItem(ctx, ownerID, product.ID, 2)
	require.NoError(t, err)

	store.CommitCartErr = errors.New("connection reset")

	_, err = checkout.Checkout(ctx, ownerID)
	require.ErrorContains(t, err, "connection reset")

	// the decrements applied before the failure were rolled back
	assert.Equal(t, int32(5), store.Available(product.ID))

	store.CommitCartErr = nil
	cart, err := carts.GetOrCreateOpenCart(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartStatusOpen, cart.Status)
	assert.Equal(t, int32(2), cart.QuantityOf(product.ID))
}

func TestCheckout_ConcurrentCartsOverSameStock(t *testing.T) {
	ctx := t.Context()

	store := storetest.New()
	carts := newCartService(store)
	checkout := service.NewCheckoutService(store)

	product := seedProduct(store, 3, "100.00")
	owners := []string{gofakeit.UUID(), gofakeit.UUID()}

	for _, ownerID := range owners {
		_, err := carts.AddItem(ctx, ownerID, product.ID, 2)
		require.NoError(t, err)
	}

	results := make(chan error, len(owners))
	var wg sync.WaitGroup
	for _, ownerID := range owners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := checkout.Checkout(ctx, ownerID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr domain.InsufficientStockError
		require.True(t, errors.As(err, &stockErr), "unexpected error: %v", err)
		failed++
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, int32(1), store.Available(product.ID))
}
