package repository

import (
	"context"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

// CustomerRepository defines all persistence operations for customers.
// The pgx implementation is in pg_customer_repo.go.
// Tests use a hand-written mock (mock_customer_repo.go).
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// GetWithSecrets returns the customer together with all of its secrets
	// ordered by ascending expiry.
	GetWithSecrets(ctx context.Context, id string) (*domain.Customer, []domain.Secret, error)
	// List returns all customers newest first, each with its secret count.
	List(ctx context.Context) ([]*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	// Delete removes the customer and, via cascade, all of its secrets.
	Delete(ctx context.Context, id string) error
}
