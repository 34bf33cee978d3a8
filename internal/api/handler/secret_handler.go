package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/secretwatch/expiry-tracker/internal/api/middleware"
	"github.com/secretwatch/expiry-tracker/internal/domain"
	"github.com/secretwatch/expiry-tracker/internal/service"
)

// SecretHandler handles secret CRUD endpoints.
type SecretHandler struct {
	svc    *service.SecretService
	logger *zap.Logger
}

func NewSecretHandler(svc *service.SecretService, logger *zap.Logger) *SecretHandler {
	return &SecretHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/secrets
func (h *SecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create secret failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

// List handles GET /api/v1/secrets?customerId=
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	secrets, err := h.svc.List(r.Context(), customerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list secrets")
		return
	}
	respondJSON(w, http.StatusOK, secrets)
}

// GetByID handles GET /api/v1/secrets/{id}
func (h *SecretHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// Update handles PUT /api/v1/secrets/{id}
func (h *SecretHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	s, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// Delete handles DELETE /api/v1/secrets/{id}
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
