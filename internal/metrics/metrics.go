package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/secretwatch/expiry-tracker/internal/notifier"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	NotificationsDelivered prometheus.Counter
	NotificationsFailed    prometheus.Counter
	DeliveryLatency        prometheus.Histogram
	RunsTotal              prometheus.Counter
	RunFailures            prometheus.Counter
	ExpiringSecrets        prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Total number of expiry cards successfully delivered to Teams webhooks.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of expiry card deliveries that failed.",
		}),
		DeliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notification_delivery_seconds",
			Help:    "Latency of a single webhook POST from render to response.",
			Buckets: prometheus.DefBuckets,
		}),
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_runs_total",
			Help: "Total number of notification runs executed.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_run_failures_total",
			Help: "Total number of runs aborted by a repository failure.",
		}),
		ExpiringSecrets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "expiring_secrets",
			Help: "Number of secrets inside the notification window at the last run.",
		}),
	}

	reg.MustRegister(
		m.NotificationsDelivered,
		m.NotificationsFailed,
		m.DeliveryLatency,
		m.RunsTotal,
		m.RunFailures,
		m.ExpiringSecrets,
	)

	return m
}

// NotifierHooks returns the metric callbacks expected by notifier.Hooks.
// Centralises the prometheus observation calls so the notifier stays
// import-free.
func (m *Metrics) NotifierHooks() notifier.Hooks {
	return notifier.Hooks{
		OnDelivered: func(latency time.Duration) {
			m.NotificationsDelivered.Inc()
			m.DeliveryLatency.Observe(latency.Seconds())
		},
		OnFailed: func() {
			m.NotificationsFailed.Inc()
		},
	}
}
