package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-graphql/internal/domain"
	"crm-graphql/internal/events"
	"crm-graphql/internal/metrics"
	"crm-graphql/internal/repository"
	"crm-graphql/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgCustomerCreated = "Customer created successfully"
	MsgCustomerFailed  = "Failed"
)

// CustomerInput is a customer record as submitted by a client.
// An empty Phone means none was provided.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

type CreateCustomerResult struct {
	Customer *domain.Customer
	Message  string
	Errors   []string
}

type BulkCreateCustomersResult struct {
	Customers []*domain.Customer
	Errors    []string
}

// CustomerService defines the interface for customer business logic
type CustomerService interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*CreateCustomerResult, error)
	BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (*BulkCreateCustomersResult, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	txManager    repository.TxManager
	publisher    events.Publisher
	logger       *zap.Logger
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	txManager repository.TxManager,
	publisher events.Publisher,
	logger *zap.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateCustomer runs every check before reporting, so a caller sees all problems at once
func (s *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*CreateCustomerResult, error) {
	errs := make([]string, 0)

	exists, err := s.customerRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		metrics.RecordMutation("createCustomer", metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to check customer email: %w", err)
	}
	if exists {
		errs = append(errs, validation.MsgEmailExists)
	}

	if input.Phone != "" && !validation.ValidPhone(input.Phone) {
		errs = append(errs, validation.MsgInvalidPhone)
	}

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, validation.MsgNameRequired)
	}

	if len(errs) > 0 {
		return rejectCustomer(errs), nil
	}

	customer := newCustomer(input)
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		// Lost a race with a concurrent insert of the same email.
		if errors.Is(err, repository.ErrCustomerAlreadyExists) {
			return rejectCustomer([]string{validation.MsgEmailExists}), nil
		}
		metrics.RecordMutation("createCustomer", metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	metrics.RecordMutation("createCustomer", metrics.OutcomeCreated)
	metrics.RecordCreated("customer", 1)

	env, err := events.CustomerCreated(customer)
	publish(ctx, s.publisher, s.logger, env, err)

	return &CreateCustomerResult{
		Customer: customer,
		Message:  MsgCustomerCreated,
		Errors:   errs,
	}, nil
}

// BulkCreateCustomers creates every valid entry in one transaction.
// Invalid entries are skipped and reported; a storage failure discards the whole batch.
func (s *customerService) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (*BulkCreateCustomersResult, error) {
	var (
		created []*domain.Customer
		errs    []string
	)

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		created = make([]*domain.Customer, 0, len(inputs))
		errs = make([]string, 0)

		for _, input := range inputs {
			// Earlier entries of this batch are visible inside the transaction.
			exists, err := s.customerRepo.ExistsByEmail(ctx, input.Email)
			if err != nil {
				return fmt.Errorf("failed to check customer email: %w", err)
			}
			if exists {
				errs = append(errs, fmt.Sprintf("Email %s already exists", input.Email))
				continue
			}

			if input.Phone != "" && !validation.ValidPhone(input.Phone) {
				errs = append(errs, fmt.Sprintf("Invalid phone format for %s", input.Email))
				continue
			}

			customer := newCustomer(input)
			if err := validation.Struct(customer); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %s", input.Email, validation.Detail(err)))
				continue
			}

			if err := s.customerRepo.Create(ctx, customer); err != nil {
				return fmt.Errorf("failed to create customer %s: %w", input.Email, err)
			}
			created = append(created, customer)
		}

		return nil
	})
	if err != nil {
		metrics.RecordMutation("bulkCreateCustomers", metrics.OutcomeFailed)
		return nil, err
	}

	outcome := metrics.OutcomeCreated
	if len(created) == 0 && len(errs) > 0 {
		outcome = metrics.OutcomeRejected
	}
	metrics.RecordMutation("bulkCreateCustomers", outcome)
	metrics.RecordCreated("customer", len(created))

	for _, customer := range created {
		env, err := events.CustomerCreated(customer)
		publish(ctx, s.publisher, s.logger, env, err)
	}

	return &BulkCreateCustomersResult{
		Customers: created,
		Errors:    errs,
	}, nil
}

func rejectCustomer(errs []string) *CreateCustomerResult {
	metrics.RecordMutation("createCustomer", metrics.OutcomeRejected)
	return &CreateCustomerResult{
		Message: MsgCustomerFailed,
		Errors:  errs,
	}
}

func newCustomer(input CustomerInput) *domain.Customer {
	return &domain.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: time.Now().UTC(),
	}
}
