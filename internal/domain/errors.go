package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSecretNotFound   = errors.New("secret not found")

	ErrCustomerNameRequired = errors.New("customer name must not be empty")
	ErrWebhookURLRequired   = errors.New("webhook URL must not be empty")
	ErrSecretNameRequired   = errors.New("secret name must not be empty")
	ErrExpiryDateRequired   = errors.New("expiry date must not be empty")
	ErrCustomerIDRequired   = errors.New("customer id must not be empty")
)
