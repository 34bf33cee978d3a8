package repository

import (
	"context"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

// SecretRepository defines all persistence operations for secrets,
// including the two window queries the notification engine runs on.
// The pgx implementation is in pg_secret_repo.go.
type SecretRepository interface {
	Create(ctx context.Context, s *domain.Secret) error
	GetByID(ctx context.Context, id string) (*domain.Secret, error)
	// List returns all secrets ordered by ascending expiry, with the owning
	// customer embedded. An empty customerID returns every secret.
	List(ctx context.Context, customerID string) ([]*domain.Secret, error)
	Update(ctx context.Context, s *domain.Secret) error
	Delete(ctx context.Context, id string) error

	// FindExpiring returns the flat list of secrets whose expiry falls
	// inside the window, ascending by expiry, customer embedded.
	FindExpiring(ctx context.Context, w domain.Window) ([]*domain.Secret, error)

	// FindExpiringGroupedByCustomer returns one group per customer that has
	// at least one secret inside the window. Secrets within a group are
	// ordered by ascending expiry; groups are ordered by their nearest
	// upcoming expiry.
	FindExpiringGroupedByCustomer(ctx context.Context, w domain.Window) ([]domain.CustomerSecrets, error)
}
