package service

import (
	"context"
	"fmt"
	"time"

	"crm-graphql/internal/domain"
	"crm-graphql/internal/repository"
)

// QueryService lists entities for the read side of the API
type QueryService interface {
	Customers(ctx context.Context) ([]*domain.Customer, error)
	Products(ctx context.Context) ([]*domain.Product, error)
	Orders(ctx context.Context) ([]*domain.Order, error)
	// OrdersSince returns orders dated at or after cutoff.
	OrdersSince(ctx context.Context, cutoff time.Time) ([]*domain.Order, error)
}

type queryService struct {
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
}

// NewQueryService creates a new instance of QueryService
func NewQueryService(
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) QueryService {
	return &queryService{
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
}

func (s *queryService) Customers(ctx context.Context) ([]*domain.Customer, error) {
	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *queryService) Products(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *queryService) Orders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *queryService) OrdersSince(ctx context.Context, cutoff time.Time) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return orders, nil
}
