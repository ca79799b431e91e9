// Package storetest provides an in-memory port.Store for tests that do not
// need a database. WithinTx snapshots state and restores it when the
// callback fails, mirroring transactional rollback; the store mutex
// serializes transactions the way row locks do in Postgres.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkrutov/techstore/internal/domain"
	"github.com/mkrutov/techstore/internal/port"
)

type Store struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
	carts    map[uuid.UUID]domain.Cart

	// CommitCartErr, when set, makes CommitCart fail. Used to exercise
	// rollback of the checkout commit phase.
	CommitCartErr error
}

func New() *Store {
	return &Store{
		products: make(map[uuid.UUID]domain.Product),
		carts:    make(map[uuid.UUID]domain.Cart),
	}
}

// SeedProduct inserts a product, assigning an ID when absent.
func (s *Store) SeedProduct(product domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	s.products[product.ID] = product
	return product
}

// Available reports a product's current stock, for assertions.
func (s *Store) Available(productID uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Available
}

func (s *Store) Repos() port.Repos {
	return s.repos(false)
}

func (s *Store) WithinTx(_ context.Context, fn func(r port.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, carts := s.snapshot()
	if err := fn(s.repos(true)); err != nil {
		s.products, s.carts = products, carts
		return err
	}
	return nil
}

func (s *Store) repos(inTx bool) port.Repos {
	return port.Repos{
		Carts:    &cartRepo{store: s, inTx: inTx},
		Products: &productRepo{store: s, inTx: inTx},
		Stock:    &stockRepo{store: s, inTx: inTx},
	}
}

func (s *Store) snapshot() (map[uuid.UUID]domain.Product, map[uuid.UUID]domain.Cart) {
	products := make(map[uuid.UUID]domain.Product, len(s.products))
	for id, p := range s.products {
		products[id] = p
	}

	carts := make(map[uuid.UUID]domain.Cart, len(s.carts))
	for id, c := range s.carts {
		lines := make([]domain.CartLine, len(c.Lines))
		copy(lines, c.Lines)
		c.Lines = lines
		carts[id] = c
	}
	return products, carts
}

// lock acquires the store mutex unless the caller already holds it via
// WithinTx.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type cartRepo struct {
	store *Store
	inTx  bool
}

func (r *cartRepo) GetOrCreateOpenCart(_ context.Context, ownerID string) (domain.Cart, error) {
	defer r.store.lock(r.inTx)()

	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	for _, cart := range r.store.carts {
		if cart.OwnerID == ownerID && cart.Status == domain.CartStatusOpen {
			return cloneCart(cart), nil
		}
	}

	cart := domain.Cart{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Status:    domain.CartStatusOpen,
		CreatedAt: time.Now(),
	}
	r.store.carts[cart.ID] = cart
	return cloneCart(cart), nil
}

func (r *cartRepo) UpsertLine(_ context.Context, cartID, productID uuid.UUID, quantity int32) error {
	defer r.store.lock(r.inTx)()

	if quantity < 1 {
		return fmt.Errorf("quantity[%d]: %w", quantity, domain.ErrInvalidQuantity)
	}

	cart, ok := r.store.carts[cartID]
	if !ok {
		return fmt.Errorf("cart[%s]: %w", cartID, domain.ErrNotFound)
	}

	for i, line := range cart.Lines {
		if line.ProductID == productID {
			cart.Lines[i].Quantity = quantity
			r.store.carts[cartID] = cart
			return nil
		}
	}

	cart.Lines = append(cart.Lines, domain.CartLine{
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	})
	r.store.carts[cartID] = cart
	return nil
}

func (r *cartRepo) DeleteLine(_ context.Context, cartID, productID uuid.UUID) (bool, error) {
	defer r.store.lock(r.inTx)()

	cart, ok := r.store.carts[cartID]
	if !ok {
		return false, nil
	}

	for i, line := range cart.Lines {
		if line.ProductID == productID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			r.store.carts[cartID] = cart
			return true, nil
		}
	}
	return false, nil
}

func (r *cartRepo) CommitCart(_ context.Context, cartID uuid.UUID) (time.Time, error) {
	defer r.store.lock(r.inTx)()

	if r.store.CommitCartErr != nil {
		return time.Time{}, r.store.CommitCartErr
	}

	cart, ok := r.store.carts[cartID]
	if !ok || cart.Status != domain.CartStatusOpen {
		return time.Time{}, fmt.Errorf("open cart[%s]: %w", cartID, domain.ErrNotFound)
	}

	committedAt := time.Now()
	cart.Status = domain.CartStatusCommitted
	cart.CommittedAt = &committedAt
	r.store.carts[cartID] = cart
	return committedAt, nil
}

func (r *cartRepo) ListOrders(_ context.Context, ownerID string) ([]domain.Cart, error) {
	defer r.store.lock(r.inTx)()

	var orders []domain.Cart
	for _, cart := range r.store.carts {
		if cart.OwnerID == ownerID && cart.Status == domain.CartStatusCommitted {
			orders = append(orders, cloneCart(cart))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CommittedAt.After(*orders[j].CommittedAt)
	})
	return orders, nil
}

type productRepo struct {
	store *Store
	inTx  bool
}

func (r *productRepo) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	defer r.store.lock(r.inTx)()

	product, ok := r.store.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	return product, nil
}

func (r *productRepo) ListProducts(_ context.Context, categoryID *uuid.UUID) ([]domain.Product, error) {
	defer r.store.lock(r.inTx)()

	var products []domain.Product
	for _, product := range r.store.products {
		if categoryID != nil && product.CategoryID != *categoryID {
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func (r *productRepo) CreateProduct(_ context.Context, product domain.Product) (domain.Product, error) {
	defer r.store.lock(r.inTx)()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	r.store.products[product.ID] = product
	return product, nil
}

func (r *productRepo) CreateCategory(_ context.Context, name string) (domain.Category, error) {
	return domain.Category{ID: uuid.New(), Name: name}, nil
}

type stockRepo struct {
	store *Store
	inTx  bool
}

func (r *stockRepo) GetAvailable(_ context.Context, productID uuid.UUID) (int32, error) {
	defer r.store.lock(r.inTx)()

	product, ok := r.store.products[productID]
	if !ok {
		return 0, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	return product.Available, nil
}

func (r *stockRepo) LockAvailable(_ context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int32, error) {
	defer r.store.lock(r.inTx)()

	available := make(map[uuid.UUID]int32, len(productIDs))
	for _, id := range productIDs {
		if product, ok := r.store.products[id]; ok {
			available[id] = product.Available
		}
	}
	return available, nil
}

func (r *stockRepo) Decrement(_ context.Context, productID uuid.UUID, amount int32) error {
	defer r.store.lock(r.inTx)()

	product, ok := r.store.products[productID]
	if !ok {
		return fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}
	if amount > product.Available {
		return domain.InsufficientStockError{ProductID: productID, Available: product.Available}
	}

	product.Available -= amount
	r.store.products[productID] = product
	return nil
}

func cloneCart(cart domain.Cart) domain.Cart {
	lines := make([]domain.CartLine, len(cart.Lines))
	copy(lines, cart.Lines)
	cart.Lines = lines
	return cart
}
