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

// SecretService holds the business rules for secret CRUD, including the
// customer-existence check on create and on reassignment.
type SecretService struct {
	secrets   repository.SecretRepository
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func NewSecretService(
	secrets repository.SecretRepository,
	customers repository.CustomerRepository,
	logger *zap.Logger,
) *SecretService {
	return &SecretService{secrets: secrets, customers: customers, logger: logger}
}

// Create validates the request, verifies the owning customer exists, and
// persists the secret.
func (s *SecretService) Create(ctx context.Context, req domain.CreateSecretRequest) (*domain.Secret, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sec := &domain.Secret{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		ExpiryDate:  req.ExpiryDate,
		CustomerID:  req.CustomerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.secrets.Create(ctx, sec); err != nil {
		return nil, fmt.Errorf("persist secret: %w", err)
	}

	sec.Customer = &domain.CustomerRef{ID: customer.ID, Name: customer.Name}
	return sec, nil
}

// List returns secrets ascending by expiry; customerID filters when non-empty.
func (s *SecretService) List(ctx context.Context, customerID string) ([]*domain.Secret, error) {
	return s.secrets.List(ctx, customerID)
}

func (s *SecretService) Get(ctx context.Context, id string) (*domain.Secret, error) {
	return s.secrets.GetByID(ctx, id)
}

// Update applies a partial update. Moving a secret to another customer
// requires that customer to exist.
func (s *SecretService) Update(ctx context.Context, id string, req domain.UpdateSecretRequest) (*domain.Secret, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sec, err := s.secrets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil && *req.CustomerID != sec.CustomerID {
		if _, err := s.customers.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
		sec.CustomerID = *req.CustomerID
	}
	if req.Name != nil {
		sec.Name = *req.Name
	}
	if req.Description != nil {
		sec.Description = req.Description
	}
	if req.ExpiryDate != nil {
		sec.ExpiryDate = *req.ExpiryDate
	}
	sec.UpdatedAt = time.Now().UTC()

	if err := s.secrets.Update(ctx, sec); err != nil {
		return nil, fmt.Errorf("update secret: %w", err)
	}
	return s.secrets.GetByID(ctx, id)
}

func (s *SecretService) Delete(ctx context.Context, id string) error {
	return s.secrets.Delete(ctx, id)
}
