package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-graphql/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Feature: crm, Property 14: Product creation preserves attributes
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := NewProductRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("created products read back with price at two places", prop.ForAll(
		func(name string, cents int64, stock int) bool {
			product := &domain.Product{
				ID:        uuid.New(),
				Name:      name,
				Price:     decimal.New(cents, -2),
				Stock:     stock,
				CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("Failed to create product: %v", err)
				return false
			}

			found, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("Failed to find product: %v", err)
				return false
			}

			return found.Name == product.Name &&
				found.Price.Equal(product.Price) &&
				found.Price.StringFixed(2) == product.Price.StringFixed(2) &&
				found.Stock == product.Stock &&
				found.CreatedAt.Equal(product.CreatedAt)
		},
		gen.RegexMatch(`[A-Z][a-z]{2,20}`),
		gen.Int64Range(1, 99999999),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_CheckConstraints(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := NewProductRepository(testDB)
	ctx := context.Background()

	tests := []struct {
		name  string
		price string
		stock int
	}{
		{name: "zero price", price: "0", stock: 1},
		{name: "negative stock", price: "1.00", stock: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := newProduct("Broken", tt.price)
			product.Stock = tt.stock

			err := repo.Create(ctx, product)
			require.Error(t, err)

			var pgErr *pgconn.PgError
			require.True(t, errors.As(err, &pgErr))
			assert.Equal(t, "23514", pgErr.Code)
		})
	}
}

func TestProductRepository_List(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	repo := NewProductRepository(testDB)
	ctx := context.Background()

	first := newProduct("Laptop", "999.99")
	second := newProduct("Mouse", "19.50")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, first.ID, products[0].ID)
	assert.Equal(t, second.ID, products[1].ID)
}
