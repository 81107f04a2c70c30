package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"crm-graphql/internal/domain"
	"crm-graphql/internal/events"
	"crm-graphql/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore backs the mock repositories. Transactions snapshot it and
// restore the snapshot on failure.
type memStore struct {
	customers map[uuid.UUID]*domain.Customer
	products  map[uuid.UUID]*domain.Product
	orders    map[uuid.UUID]*domain.Order
	links     map[uuid.UUID][]uuid.UUID

	existsErr      error
	createOrderErr error
	setProductsErr error
	commitErr      error
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[uuid.UUID]*domain.Customer),
		products:  make(map[uuid.UUID]*domain.Product),
		orders:    make(map[uuid.UUID]*domain.Order),
		links:     make(map[uuid.UUID][]uuid.UUID),
	}
}

type snapshot struct {
	customers map[uuid.UUID]*domain.Customer
	products  map[uuid.UUID]*domain.Product
	orders    map[uuid.UUID]*domain.Order
	links     map[uuid.UUID][]uuid.UUID
}

func (m *memStore) snapshot() snapshot {
	s := snapshot{
		customers: make(map[uuid.UUID]*domain.Customer, len(m.customers)),
		products:  make(map[uuid.UUID]*domain.Product, len(m.products)),
		orders:    make(map[uuid.UUID]*domain.Order, len(m.orders)),
		links:     make(map[uuid.UUID][]uuid.UUID, len(m.links)),
	}
	for k, v := range m.customers {
		s.customers[k] = v
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.orders {
		copied := *v
		s.orders[k] = &copied
	}
	for k, v := range m.links {
		s.links[k] = append([]uuid.UUID(nil), v...)
	}
	return s
}

func (m *memStore) restore(s snapshot) {
	m.customers = s.customers
	m.products = s.products
	m.orders = s.orders
	m.links = s.links
}

// Mock transaction manager
type mockTxManager struct {
	store *memStore
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	snap := m.store.snapshot()

	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	if m.store.commitErr != nil {
		m.store.restore(snap)
		return m.store.commitErr
	}
	return nil
}

// Mock customer repository
type mockCustomerRepository struct {
	store *memStore
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	for _, c := range m.store.customers {
		if c.Email == customer.Email {
			return repository.ErrCustomerAlreadyExists
		}
	}
	m.store.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, ok := m.store.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return customer, nil
}

func (m *mockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.store.existsErr != nil {
		return false, m.store.existsErr
	}
	for _, c := range m.store.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	customers := make([]*domain.Customer, 0, len(m.store.customers))
	for _, c := range m.store.customers {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool {
		return earlier(customers[i].CreatedAt, customers[j].CreatedAt, customers[i].ID, customers[j].ID)
	})
	return customers, nil
}

// Mock product repository
type mockProductRepository struct {
	store *memStore
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.store.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	seen := make(map[uuid.UUID]bool)
	products := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.store.products[id]; ok && !seen[id] {
			seen[id] = true
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(m.store.products))
	for _, p := range m.store.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return earlier(products[i].CreatedAt, products[j].CreatedAt, products[i].ID, products[j].ID)
	})
	return products, nil
}

// Mock order repository
type mockOrderRepository struct {
	store *memStore
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.store.createOrderErr != nil {
		return m.store.createOrderErr
	}
	stored := *order
	stored.Customer = nil
	stored.Products = nil
	m.store.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) SetProducts(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error {
	if m.store.setProductsErr != nil {
		return m.store.setProductsErr
	}
	m.store.links[orderID] = append([]uuid.UUID(nil), productIDs...)
	return nil
}

func (m *mockOrderRepository) UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	order, ok := m.store.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.TotalAmount = total
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.store.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return m.hydrate(order), nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return m.ListSince(ctx, time.Time{})
}

func (m *mockOrderRepository) ListSince(ctx context.Context, cutoff time.Time) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(m.store.orders))
	for _, o := range m.store.orders {
		if !o.OrderDate.Before(cutoff) {
			orders = append(orders, m.hydrate(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return earlier(orders[i].OrderDate, orders[j].OrderDate, orders[i].ID, orders[j].ID)
	})
	return orders, nil
}

func (m *mockOrderRepository) hydrate(order *domain.Order) *domain.Order {
	hydrated := *order
	hydrated.Customer = m.store.customers[order.CustomerID]
	hydrated.Products = make([]*domain.Product, 0)
	for _, id := range m.store.links[order.ID] {
		hydrated.Products = append(hydrated.Products, m.store.products[id])
	}
	return &hydrated
}

func earlier(a, b time.Time, idA, idB uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return strings.Compare(idA.String(), idB.String()) < 0
}

// Recording publisher
type mockPublisher struct {
	published []events.Envelope
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, env events.Envelope) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, env)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) count(eventType string) int {
	n := 0
	for _, env := range m.published {
		if env.EventType == eventType {
			n++
		}
	}
	return n
}

// fixture wires every service to one store
type fixture struct {
	store     *memStore
	tx        *mockTxManager
	publisher *mockPublisher
	customers *mockCustomerRepository
	products  *mockProductRepository
	orders    *mockOrderRepository
}

func newFixture() *fixture {
	store := newMemStore()
	return &fixture{
		store:     store,
		tx:        &mockTxManager{store: store},
		publisher: &mockPublisher{},
		customers: &mockCustomerRepository{store: store},
		products:  &mockProductRepository{store: store},
		orders:    &mockOrderRepository{store: store},
	}
}

func (f *fixture) seedCustomer(email string) *domain.Customer {
	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      "Seeded",
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	f.store.customers[customer.ID] = customer
	return customer
}

func (f *fixture) seedProduct(name, price string) *domain.Product {
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		CreatedAt: time.Now().UTC(),
	}
	f.store.products[product.ID] = product
	return product
}

var errStorage = errors.New("storage unavailable")
