package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

type pgSecretRepository struct {
	pool *pgxpool.Pool
}

// NewPgSecretRepository returns a SecretRepository backed by PostgreSQL.
func NewPgSecretRepository(pool *pgxpool.Pool) SecretRepository {
	return &pgSecretRepository{pool: pool}
}

const secretWithCustomerCols = `
	s.id, s.name, s.description, s.expiry_date, s.customer_id,
	s.created_at, s.updated_at, c.id, c.name`

func (r *pgSecretRepository) Create(ctx context.Context, s *domain.Secret) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO secrets (id, name, description, expiry_date, customer_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.Name, s.Description, s.ExpiryDate, s.CustomerID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert secret: %w", err)
	}
	return nil
}

func (r *pgSecretRepository) GetByID(ctx context.Context, id string) (*domain.Secret, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+secretWithCustomerCols+`
		FROM secrets s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.id = $1`, id)

	s, err := scanSecretWithCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSecretNotFound
	}
	return s, err
}

func (r *pgSecretRepository) List(ctx context.Context, customerID string) ([]*domain.Secret, error) {
	query := `
		SELECT ` + secretWithCustomerCols + `
		FROM secrets s
		JOIN customers c ON c.id = s.customer_id`
	var args []any
	if customerID != "" {
		query += ` WHERE s.customer_id = $1`
		args = append(args, customerID)
	}
	query += ` ORDER BY s.expiry_date ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer rows.Close()
	return scanSecretsWithCustomer(rows)
}

func (r *pgSecretRepository) Update(ctx context.Context, s *domain.Secret) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE secrets
		SET name = $1, description = $2, expiry_date = $3, customer_id = $4, updated_at = $5
		WHERE id = $6`,
		s.Name, s.Description, s.ExpiryDate, s.CustomerID, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSecretNotFound
	}
	return nil
}

func (r *pgSecretRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM secrets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSecretNotFound
	}
	return nil
}

func (r *pgSecretRepository) FindExpiring(ctx context.Context, w domain.Window) ([]*domain.Secret, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+secretWithCustomerCols+`
		FROM secrets s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.expiry_date >= $1 AND s.expiry_date <= $2
		ORDER BY s.expiry_date ASC`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("find expiring secrets: %w", err)
	}
	defer rows.Close()
	return scanSecretsWithCustomer(rows)
}

func (r *pgSecretRepository) FindExpiringGroupedByCustomer(ctx context.Context, w domain.Window) ([]domain.CustomerSecrets, error) {
	// One flat query ordered by each customer's nearest expiry, then by
	// expiry within the customer; grouping is assembled while scanning so
	// the database ordering is preserved exactly.
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.description, s.expiry_date, s.customer_id,
		       s.created_at, s.updated_at,
		       c.id, c.name, c.webhook_url, c.created_at, c.updated_at
		FROM secrets s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.expiry_date >= $1 AND s.expiry_date <= $2
		ORDER BY MIN(s.expiry_date) OVER (PARTITION BY c.id) ASC,
		         c.id ASC, s.expiry_date ASC`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("find expiring grouped: %w", err)
	}
	defer rows.Close()

	var groups []domain.CustomerSecrets
	index := make(map[string]int)
	for rows.Next() {
		var s domain.Secret
		var c domain.Customer
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.ExpiryDate,
			&s.CustomerID, &s.CreatedAt, &s.UpdatedAt,
			&c.ID, &c.Name, &c.WebhookURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan expiring secret: %w", err)
		}

		i, ok := index[c.ID]
		if !ok {
			i = len(groups)
			index[c.ID] = i
			groups = append(groups, domain.CustomerSecrets{Customer: c})
		}
		groups[i].Secrets = append(groups[i].Secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find expiring grouped: %w", err)
	}
	return groups, nil
}

// ---- helpers ----

func scanSecretWithCustomer(row pgx.Row) (*domain.Secret, error) {
	var s domain.Secret
	var ref domain.CustomerRef
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.ExpiryDate,
		&s.CustomerID, &s.CreatedAt, &s.UpdatedAt, &ref.ID, &ref.Name)
	if err != nil {
		return nil, err
	}
	s.Customer = &ref
	return &s, nil
}

func scanSecretsWithCustomer(rows pgx.Rows) ([]*domain.Secret, error) {
	var result []*domain.Secret
	for rows.Next() {
		s, err := scanSecretWithCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
