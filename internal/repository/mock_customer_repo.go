package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

// MockCustomerRepository is a hand-written, in-memory implementation of
// CustomerRepository used in unit tests. No mock-generation library needed.
type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
	secrets   *MockSecretRepository

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr error
	ListErr   error
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{customers: make(map[string]*domain.Customer)}
}

func (m *MockCustomerRepository) Create(_ context.Context, c *domain.Customer) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *c
	m.customers[c.ID] = &clone
	return nil
}

func (m *MockCustomerRepository) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockCustomerRepository) GetWithSecrets(ctx context.Context, id string) (*domain.Customer, []domain.Secret, error) {
	c, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var secrets []domain.Secret
	if m.secrets != nil {
		list, err := m.secrets.List(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range list {
			secrets = append(secrets, *s)
		}
	}
	return c, secrets, nil
}

func (m *MockCustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		clone := *c
		if m.secrets != nil {
			clone.SecretCount = m.secrets.countForCustomer(c.ID)
		}
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockCustomerRepository) Update(_ context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	clone := *c
	m.customers[c.ID] = &clone
	return nil
}

func (m *MockCustomerRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(m.customers, id)
	if m.secrets != nil {
		m.secrets.deleteForCustomer(id)
	}
	return nil
}
