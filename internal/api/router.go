package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/secretwatch/expiry-tracker/internal/api/handler"
	apimw "github.com/secretwatch/expiry-tracker/internal/api/middleware"
	"github.com/secretwatch/expiry-tracker/internal/notifier"
	"github.com/secretwatch/expiry-tracker/internal/scheduler"
	"github.com/secretwatch/expiry-tracker/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	customers *service.CustomerService,
	secrets *service.SecretService,
	n *notifier.Notifier,
	sched *scheduler.Scheduler,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ch := handler.NewCustomerHandler(customers, logger)
	sh := handler.NewSecretHandler(secrets, logger)
	nh := handler.NewNotificationHandler(n, sched, logger)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Customers
		r.Post("/customers", ch.Create)
		r.Get("/customers", ch.List)
		r.Get("/customers/{id}", ch.GetByID)
		r.Put("/customers/{id}", ch.Update)
		r.Delete("/customers/{id}", ch.Delete)

		// Secrets
		r.Post("/secrets", sh.Create)
		r.Get("/secrets", sh.List)
		r.Get("/secrets/{id}", sh.GetByID)
		r.Put("/secrets/{id}", sh.Update)
		r.Delete("/secrets/{id}", sh.Delete)

		// Notification engine
		r.Post("/notifications/run", nh.Run)
		r.Get("/notifications/preview", nh.Preview)
		r.Get("/scheduler", nh.SchedulerStatus)
	})

	return r
}
