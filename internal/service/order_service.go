package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-graphql/internal/domain"
	"crm-graphql/internal/events"
	"crm-graphql/internal/metrics"
	"crm-graphql/internal/repository"
	"crm-graphql/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderInput references a customer and products by their textual ids.
// A nil OrderDate means the order is dated at creation time.
type OrderInput struct {
	CustomerID string
	ProductIDs []string
	OrderDate  *time.Time
}

type CreateOrderResult struct {
	Order  *domain.Order
	Errors []string
}

// OrderService defines the interface for order business logic
type OrderService interface {
	CreateOrder(ctx context.Context, input OrderInput) (*CreateOrderResult, error)
}

type orderService struct {
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	txManager    repository.TxManager
	publisher    events.Publisher
	logger       *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	txManager repository.TxManager,
	publisher events.Publisher,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateOrder stops at the first unmet precondition. The order, its products
// and its total are written in one transaction.
func (s *orderService) CreateOrder(ctx context.Context, input OrderInput) (*CreateOrderResult, error) {
	customer, err := s.resolveCustomer(ctx, input.CustomerID)
	if err != nil {
		metrics.RecordMutation("createOrder", metrics.OutcomeFailed)
		return nil, err
	}
	if customer == nil {
		return rejectOrder(validation.MsgInvalidCustomer), nil
	}

	if len(input.ProductIDs) == 0 {
		return rejectOrder(validation.MsgNoProducts), nil
	}

	products, ok, err := s.resolveProducts(ctx, input.ProductIDs)
	if err != nil {
		metrics.RecordMutation("createOrder", metrics.OutcomeFailed)
		return nil, err
	}
	if !ok {
		return rejectOrder(validation.MsgInvalidProducts), nil
	}

	now := time.Now().UTC()
	orderDate := now
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	order := &domain.Order{
		ID:          uuid.New(),
		CustomerID:  customer.ID,
		Customer:    customer,
		Products:    products,
		OrderDate:   orderDate,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		if err := s.orderRepo.SetProducts(ctx, order.ID, order.ProductIDs()); err != nil {
			return err
		}

		order.TotalAmount = domain.SumPrices(order.Products)
		return s.orderRepo.UpdateTotal(ctx, order.ID, order.TotalAmount)
	})
	if err != nil {
		metrics.RecordMutation("createOrder", metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.RecordMutation("createOrder", metrics.OutcomeCreated)
	metrics.RecordCreated("order", 1)

	env, err := events.OrderCreated(order)
	publish(ctx, s.publisher, s.logger, env, err)

	return &CreateOrderResult{Order: order, Errors: []string{}}, nil
}

// resolveCustomer returns nil without error when the id is malformed or unknown
func (s *orderService) resolveCustomer(ctx context.Context, rawID string) (*domain.Customer, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, nil
	}

	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}

// resolveProducts reports ok=false unless every requested id maps to a
// distinct existing product
func (s *orderService) resolveProducts(ctx context.Context, rawIDs []string) ([]*domain.Product, bool, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, false, nil
		}
		ids = append(ids, id)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find products: %w", err)
	}

	return products, len(products) == len(rawIDs), nil
}

func rejectOrder(msg string) *CreateOrderResult {
	metrics.RecordMutation("createOrder", metrics.OutcomeRejected)
	return &CreateOrderResult{Errors: []string{msg}}
}
