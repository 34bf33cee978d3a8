package domain

import "time"

// Customer owns a set of secrets and a single Teams webhook endpoint
// that expiry alerts for those secrets are delivered to.
type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	WebhookURL string    `json:"webhookUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// SecretCount is populated by list queries only.
	SecretCount int `json:"secretCount"`
}

// CustomerRef is the minimal customer projection embedded in secret payloads.
type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateCustomerRequest is the inbound payload for creating a customer.
type CreateCustomerRequest struct {
	Name       string `json:"name"`
	WebhookURL string `json:"webhookUrl"`
}

// Validate checks required fields. The webhook URL is intentionally not
// parsed here: a malformed endpoint surfaces as a delivery failure.
func (r *CreateCustomerRequest) Validate() error {
	if r.Name == "" {
		return ErrCustomerNameRequired
	}
	if r.WebhookURL == "" {
		return ErrWebhookURLRequired
	}
	return nil
}

// UpdateCustomerRequest carries a partial customer update.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name       *string `json:"name,omitempty"`
	WebhookURL *string `json:"webhookUrl,omitempty"`
}

func (r *UpdateCustomerRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrCustomerNameRequired
	}
	if r.WebhookURL != nil && *r.WebhookURL == "" {
		return ErrWebhookURLRequired
	}
	return nil
}
