package service

import (
	"context"
	"fmt"
	"time"

	"crm-graphql/internal/domain"
	"crm-graphql/internal/metrics"
	"crm-graphql/internal/repository"
	"crm-graphql/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput is a product as submitted by a client. Stock is nil when omitted.
type ProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock *int
}

type CreateProductResult struct {
	Product *domain.Product
	Errors  []string
}

// ProductService defines the interface for product business logic
type ProductService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*CreateProductResult, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*CreateProductResult, error) {
	errs := make([]string, 0)

	// Prices are stored with two decimal places.
	price := input.Price.Round(2)
	if !validation.PricePositive(price) {
		errs = append(errs, validation.MsgPriceNotPositive)
	}
	if !validation.StockNonNegative(input.Stock) {
		errs = append(errs, validation.MsgNegativeStock)
	}

	if len(errs) > 0 {
		metrics.RecordMutation("createProduct", metrics.OutcomeRejected)
		return &CreateProductResult{Errors: errs}, nil
	}

	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}

	product := &domain.Product{
		ID:        uuid.New(),
		Name:      input.Name,
		Price:     price,
		Stock:     stock,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		metrics.RecordMutation("createProduct", metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.RecordMutation("createProduct", metrics.OutcomeCreated)
	metrics.RecordCreated("product", 1)

	return &CreateProductResult{Product: product, Errors: errs}, nil
}
