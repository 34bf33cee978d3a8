package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/secretwatch/expiry-tracker/internal/domain"
	"github.com/secretwatch/expiry-tracker/internal/repository"
)

// CustomerService holds the business rules for customer CRUD.
// HTTP handlers depend on this service, not on the repository directly.
type CustomerService struct {
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func NewCustomerService(customers repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, logger: logger}
}

// Create validates and persists a new customer.
func (s *CustomerService) Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Customer{
		ID:         uuid.New().String(),
		Name:       req.Name,
		WebhookURL: req.WebhookURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("persist customer: %w", err)
	}
	return c, nil
}

// List returns all customers newest first, with secret counts.
func (s *CustomerService) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.customers.List(ctx)
}

// Get returns one customer together with its secrets, ascending by expiry.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, []domain.Secret, error) {
	return s.customers.GetWithSecrets(ctx, id)
}

// Update applies a partial update. Nil request fields keep the stored value.
func (s *CustomerService) Update(ctx context.Context, id string, req domain.UpdateCustomerRequest) (*domain.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.WebhookURL != nil {
		c.WebhookURL = *req.WebhookURL
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.customers.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// Delete removes the customer and all of its secrets.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return s.customers.Delete(ctx, id)
}
