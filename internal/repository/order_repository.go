package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crm-graphql/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	// SetProducts replaces the products attached to an order.
	SetProducts(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error
	UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// ListSince returns orders whose order_date is at or after cutoff.
	ListSince(ctx context.Context, cutoff time.Time) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const selectOrders = `
	SELECT o.id, o.customer_id, o.order_date, o.total_amount, o.created_at,
	       c.id, c.name, c.email, c.phone, c.created_at
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
`

// Create inserts the order row without its products
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, order_date, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := conn(ctx, r.db).ExecContext(
		ctx,
		query,
		order.ID,
		order.CustomerID,
		order.OrderDate,
		order.TotalAmount,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *orderRepository) SetProducts(ctx context.Context, orderID uuid.UUID, productIDs []uuid.UUID) error {
	db := conn(ctx, r.db)

	if _, err := db.ExecContext(ctx, `DELETE FROM order_products WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to clear order products: %w", err)
	}

	query := `
		INSERT INTO order_products (order_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, productID := range productIDs {
		if _, err := db.ExecContext(ctx, query, orderID, productID); err != nil {
			return fmt.Errorf("failed to attach product %s: %w", productID, err)
		}
	}

	return nil
}

func (r *orderRepository) UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE orders SET total_amount = $2 WHERE id = $1`,
		orderID, total.Round(2),
	)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// FindByID retrieves an order with its customer and products
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	db := conn(ctx, r.db)

	order, err := scanOrder(db.QueryRowContext(ctx, selectOrders+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by id: %w", err)
	}

	orders := []*domain.Order{order}
	if err := r.attachProducts(ctx, db, orders); err != nil {
		return nil, err
	}

	return order, nil
}

// List returns all orders ordered by order date
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.query(ctx, selectOrders+` ORDER BY o.order_date, o.id`)
}

func (r *orderRepository) ListSince(ctx context.Context, cutoff time.Time) ([]*domain.Order, error) {
	return r.query(ctx, selectOrders+` WHERE o.order_date >= $1 ORDER BY o.order_date, o.id`, cutoff)
}

func (r *orderRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	db := conn(ctx, r.db)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	if err := r.attachProducts(ctx, db, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachProducts loads products for all orders in a single query
func (r *orderRepository) attachProducts(ctx context.Context, db DBTX, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		order.Products = make([]*domain.Product, 0)
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}

	query := `
		SELECT op.order_id, p.id, p.name, p.price, p.stock, p.created_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = ANY($1::uuid[])
		ORDER BY op.order_id, p.id
	`

	rows, err := db.QueryContext(ctx, query, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("failed to load order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			product domain.Product
		)
		if err := rows.Scan(
			&orderID,
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Stock,
			&product.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan order product: %w", err)
		}

		if order, ok := byID[orderID]; ok {
			order.Products = append(order.Products, &product)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order products: %w", err)
	}

	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order    domain.Order
		customer domain.Customer
		phone    sql.NullString
	)

	if err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.OrderDate,
		&order.TotalAmount,
		&order.CreatedAt,
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&phone,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}

	customer.Phone = phone.String
	order.Customer = &customer
	return &order, nil
}
