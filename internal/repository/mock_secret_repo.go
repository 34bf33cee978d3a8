package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

// MockSecretRepository is a hand-written, in-memory implementation of
// SecretRepository used in unit tests. It mirrors the ordering guarantees
// of the PostgreSQL implementation so notifier tests see realistic data.
type MockSecretRepository struct {
	mu        sync.RWMutex
	secrets   map[string]*domain.Secret
	customers *MockCustomerRepository

	// Optional error overrides — set in tests to simulate failure paths.
	CreateErr       error
	FindExpiringErr error
}

// NewMockSecretRepository wires a secret mock to a customer mock so that
// customer embedding, secret counts, and cascade deletes behave like the
// real database.
func NewMockSecretRepository(customers *MockCustomerRepository) *MockSecretRepository {
	m := &MockSecretRepository{
		secrets:   make(map[string]*domain.Secret),
		customers: customers,
	}
	if customers != nil {
		customers.secrets = m
	}
	return m
}

func (m *MockSecretRepository) Create(_ context.Context, s *domain.Secret) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.secrets[s.ID] = &clone
	return nil
}

func (m *MockSecretRepository) GetByID(ctx context.Context, id string) (*domain.Secret, error) {
	m.mu.RLock()
	s, ok := m.secrets[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSecretNotFound
	}
	clone := *s
	m.embedCustomer(ctx, &clone)
	return &clone, nil
}

func (m *MockSecretRepository) List(ctx context.Context, customerID string) ([]*domain.Secret, error) {
	m.mu.RLock()
	var result []*domain.Secret
	for _, s := range m.secrets {
		if customerID != "" && s.CustomerID != customerID {
			continue
		}
		clone := *s
		result = append(result, &clone)
	}
	m.mu.RUnlock()

	sortByExpiry(result)
	for _, s := range result {
		m.embedCustomer(ctx, s)
	}
	return result, nil
}

func (m *MockSecretRepository) Update(_ context.Context, s *domain.Secret) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[s.ID]; !ok {
		return domain.ErrSecretNotFound
	}
	clone := *s
	m.secrets[s.ID] = &clone
	return nil
}

func (m *MockSecretRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[id]; !ok {
		return domain.ErrSecretNotFound
	}
	delete(m.secrets, id)
	return nil
}

func (m *MockSecretRepository) FindExpiring(ctx context.Context, w domain.Window) ([]*domain.Secret, error) {
	if m.FindExpiringErr != nil {
		return nil, m.FindExpiringErr
	}
	m.mu.RLock()
	var result []*domain.Secret
	for _, s := range m.secrets {
		if w.Contains(s.ExpiryDate) {
			clone := *s
			result = append(result, &clone)
		}
	}
	m.mu.RUnlock()

	sortByExpiry(result)
	for _, s := range result {
		m.embedCustomer(ctx, s)
	}
	return result, nil
}

func (m *MockSecretRepository) FindExpiringGroupedByCustomer(ctx context.Context, w domain.Window) ([]domain.CustomerSecrets, error) {
	flat, err := m.FindExpiring(ctx, w)
	if err != nil {
		return nil, err
	}

	// flat is ascending by expiry, so groups form in nearest-expiry order
	// and secrets within each group stay ascending.
	var groups []domain.CustomerSecrets
	index := make(map[string]int)
	for _, s := range flat {
		i, ok := index[s.CustomerID]
		if !ok {
			var c domain.Customer
			if m.customers != nil {
				if got, err := m.customers.GetByID(ctx, s.CustomerID); err == nil {
					c = *got
				}
			}
			if c.ID == "" {
				c = domain.Customer{ID: s.CustomerID}
			}
			i = len(groups)
			index[s.CustomerID] = i
			groups = append(groups, domain.CustomerSecrets{Customer: c})
		}
		clone := *s
		clone.Customer = nil
		groups[i].Secrets = append(groups[i].Secrets, clone)
	}
	return groups, nil
}

// ---- helpers ----

func (m *MockSecretRepository) embedCustomer(ctx context.Context, s *domain.Secret) {
	if m.customers == nil {
		return
	}
	if c, err := m.customers.GetByID(ctx, s.CustomerID); err == nil {
		s.Customer = &domain.CustomerRef{ID: c.ID, Name: c.Name}
	}
}

func (m *MockSecretRepository) countForCustomer(customerID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.secrets {
		if s.CustomerID == customerID {
			n++
		}
	}
	return n
}

func (m *MockSecretRepository) deleteForCustomer(customerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.secrets {
		if s.CustomerID == customerID {
			delete(m.secrets, id)
		}
	}
}

func sortByExpiry(secrets []*domain.Secret) {
	sort.SliceStable(secrets, func(i, j int) bool {
		return secrets[i].ExpiryDate.Before(secrets[j].ExpiryDate)
	})
}
