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

// CustomerHandler handles customer CRUD endpoints.
type CustomerHandler struct {
	svc    *service.CustomerService
	logger *zap.Logger
}

func NewCustomerHandler(svc *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create customer failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

// GetByID handles GET /api/v1/customers/{id}
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, secrets, err := h.svc.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"webhookUrl": c.WebhookURL,
		"createdAt":  c.CreatedAt,
		"updatedAt":  c.UpdatedAt,
		"secrets":    secrets,
	})
}

// Update handles PUT /api/v1/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	c, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/v1/customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
