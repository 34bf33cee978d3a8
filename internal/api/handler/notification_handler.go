package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	apimw "github.com/secretwatch/expiry-tracker/internal/api/middleware"
	"github.com/secretwatch/expiry-tracker/internal/notifier"
	"github.com/secretwatch/expiry-tracker/internal/scheduler"
)

// NotificationHandler exposes the on-demand run trigger, the read-only
// preview, and the scheduler status.
type NotificationHandler struct {
	notifier *notifier.Notifier
	sched    *scheduler.Scheduler
	logger   *zap.Logger
}

func NewNotificationHandler(n *notifier.Notifier, sched *scheduler.Scheduler, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifier: n, sched: sched, logger: logger}
}

// Run handles POST /api/v1/notifications/run
//
// Executes one notification pass immediately, outside the daily schedule.
// Partial delivery failure is not an error: the response always carries
// the per-customer success flags.
func (h *NotificationHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.notifier.RunOnce(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("manual notification run failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to process notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":           "Notifications processed",
		"notificationsSent": result.NotificationsSent,
		"totalCustomers":    result.TotalCustomers,
		"details":           result.Details,
	})
}

// Preview handles GET /api/v1/notifications/preview
//
// Returns the secrets currently inside the notification window without
// delivering anything.
func (h *NotificationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	secrets, err := h.notifier.Preview(r.Context(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch expiring secrets")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(secrets),
		"secrets": secrets,
	})
}

// SchedulerStatus handles GET /api/v1/scheduler
func (h *NotificationHandler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"state": h.sched.State()}
	if next := h.sched.NextFire(); !next.IsZero() {
		status["next_fire"] = next
	}
	respondJSON(w, http.StatusOK, status)
}
