package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secretwatch/expiry-tracker/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrSecretNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCustomerNameRequired),
		errors.Is(err, domain.ErrWebhookURLRequired),
		errors.Is(err, domain.ErrSecretNameRequired),
		errors.Is(err, domain.ErrExpiryDateRequired),
		errors.Is(err, domain.ErrCustomerIDRequired):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
