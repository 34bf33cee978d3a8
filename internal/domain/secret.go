package domain

import "time"

// Secret is a customer-owned credential or license with an expiry date.
// The notification engine only reads secrets; all mutation happens through
// the CRUD API.
type Secret struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	ExpiryDate  time.Time    `json:"expiryDate"`
	CustomerID  string       `json:"customerId"`
	Customer    *CustomerRef `json:"customer,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CreateSecretRequest is the inbound payload for creating a secret.
type CreateSecretRequest struct {
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ExpiryDate  time.Time `json:"expiryDate"`
	CustomerID  string    `json:"customerId"`
}

func (r *CreateSecretRequest) Validate() error {
	if r.Name == "" {
		return ErrSecretNameRequired
	}
	if r.ExpiryDate.IsZero() {
		return ErrExpiryDateRequired
	}
	if r.CustomerID == "" {
		return ErrCustomerIDRequired
	}
	return nil
}

// UpdateSecretRequest carries a partial secret update.
// Nil fields are left unchanged.
type UpdateSecretRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	CustomerID  *string    `json:"customerId,omitempty"`
}

func (r *UpdateSecretRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrSecretNameRequired
	}
	if r.ExpiryDate != nil && r.ExpiryDate.IsZero() {
		return ErrExpiryDateRequired
	}
	if r.CustomerID != nil && *r.CustomerID == "" {
		return ErrCustomerIDRequired
	}
	return nil
}
