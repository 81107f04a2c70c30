package service

import (
	"context"
	"testing"
	"time"

	"crm-graphql/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryService_OrdersSince(t *testing.T) {
	f := newFixture()
	customer := f.seedCustomer("recent@example.com")
	svc := NewQueryService(f.customers, f.products, f.orders)

	now := time.Now().UTC()
	recent := &domain.Order{ID: uuid.New(), CustomerID: customer.ID, OrderDate: now.Add(-3 * 24 * time.Hour)}
	old := &domain.Order{ID: uuid.New(), CustomerID: customer.ID, OrderDate: now.Add(-10 * 24 * time.Hour)}
	f.store.orders[recent.ID] = recent
	f.store.orders[old.ID] = old

	orders, err := svc.OrdersSince(context.Background(), now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, recent.ID, orders[0].ID)
	assert.Equal(t, "recent@example.com", orders[0].Customer.Email)

	all, err := svc.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, old.ID, all[0].ID)
}

func TestQueryService_ListsInCreationOrder(t *testing.T) {
	f := newFixture()
	svc := NewQueryService(f.customers, f.products, f.orders)

	base := time.Now().UTC()
	for i, email := range []string{"z@example.com", "a@example.com"} {
		c := f.seedCustomer(email)
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	pen := f.seedProduct("Pen", "1.00")
	pen.CreatedAt = base.Add(time.Minute)
	ink := f.seedProduct("Ink", "2.00")
	ink.CreatedAt = base

	customers, err := svc.Customers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "z@example.com", customers[0].Email)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Ink", products[0].Name)
}
