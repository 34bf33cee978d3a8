package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

type pgCustomerRepository struct {
	pool *pgxpool.Pool
}

// NewPgCustomerRepository returns a CustomerRepository backed by PostgreSQL.
func NewPgCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &pgCustomerRepository{pool: pool}
}

func (r *pgCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, webhook_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.WebhookURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *pgCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, webhook_url, created_at, updated_at
		FROM customers WHERE id = $1`, id)

	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.WebhookURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (r *pgCustomerRepository) GetWithSecrets(ctx context.Context, id string) (*domain.Customer, []domain.Secret, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, expiry_date, customer_id, created_at, updated_at
		FROM secrets
		WHERE customer_id = $1
		ORDER BY expiry_date ASC`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get customer secrets: %w", err)
	}
	defer rows.Close()

	var secrets []domain.Secret
	for rows.Next() {
		var s domain.Secret
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.ExpiryDate,
			&s.CustomerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, nil, fmt.Errorf("scan secret: %w", err)
		}
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("get customer secrets: %w", err)
	}
	return c, secrets, nil
}

func (r *pgCustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.webhook_url, c.created_at, c.updated_at,
		       COUNT(s.id)
		FROM customers c
		LEFT JOIN secrets s ON s.customer_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.WebhookURL, &c.CreatedAt,
			&c.UpdatedAt, &c.SecretCount); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

func (r *pgCustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers
		SET name = $1, webhook_url = $2, updated_at = $3
		WHERE id = $4`,
		c.Name, c.WebhookURL, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *pgCustomerRepository) Delete(ctx context.Context, id string) error {
	// secrets.customer_id has ON DELETE CASCADE; one statement suffices.
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
