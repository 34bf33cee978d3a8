package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/secretwatch/expiry-tracker/internal/domain"
	"github.com/secretwatch/expiry-tracker/internal/ratelimiter"
	"github.com/secretwatch/expiry-tracker/internal/repository"
	"github.com/secretwatch/expiry-tracker/internal/teams"
	"github.com/secretwatch/expiry-tracker/internal/webhook"
)

// Hooks carries the metric callback functions injected by main.
// Using a struct keeps the constructor signature clean and the notifier
// metrics-agnostic.
type Hooks struct {
	OnDelivered func(latency time.Duration)
	OnFailed    func()
}

// Notifier coordinates one end-to-end notification pass: fetch the secrets
// inside the window grouped by customer, render one card per customer, and
// deliver each card to that customer's webhook.
//
// It holds no state between runs; everything transient lives on the stack
// of RunOnce.
type Notifier struct {
	secrets     repository.SecretRepository
	dispatcher  webhook.Dispatcher
	limiter     *ratelimiter.DeliveryLimiter
	logger      *zap.Logger
	horizonDays int
	baseURL     string
	workers     int

	onDelivered func(time.Duration)
	onFailed    func()
}

// New constructs a Notifier. limiter may be nil (no throttling).
// Hooks fields may be nil (no-op).
func New(
	secrets repository.SecretRepository,
	dispatcher webhook.Dispatcher,
	limiter *ratelimiter.DeliveryLimiter,
	logger *zap.Logger,
	horizonDays int,
	baseURL string,
	workers int,
	hooks Hooks,
) *Notifier {
	if workers < 1 {
		workers = 1
	}
	onDelivered := hooks.OnDelivered
	if onDelivered == nil {
		onDelivered = func(time.Duration) {}
	}
	onFailed := hooks.OnFailed
	if onFailed == nil {
		onFailed = func() {}
	}
	return &Notifier{
		secrets:     secrets,
		dispatcher:  dispatcher,
		limiter:     limiter,
		logger:      logger,
		horizonDays: horizonDays,
		baseURL:     baseURL,
		workers:     workers,
		onDelivered: onDelivered,
		onFailed:    onFailed,
	}
}

// RunOnce executes a single notification pass against the given instant.
//
// The same now is used for the window bounds and for every rendered
// days-remaining value, so a secret sitting exactly on a window edge cannot
// be counted by the query and then rendered outside the window by a later
// clock read.
//
// A repository failure aborts the whole run and is returned to the caller;
// no partial RunResult is produced and the dispatcher is never touched.
// Individual delivery failures are recorded per customer and never abort
// the run.
func (n *Notifier) RunOnce(ctx context.Context, now time.Time) (*domain.RunResult, error) {
	window := domain.NewWindow(now, n.horizonDays)

	groups, err := n.secrets.FindExpiringGroupedByCustomer(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("fetch expiring secrets: %w", err)
	}

	// The repository contract excludes empty groups; drop any that slip
	// through so they cannot produce empty cards or phantom result entries.
	kept := groups[:0]
	for _, g := range groups {
		if len(g.Secrets) > 0 {
			kept = append(kept, g)
		}
	}
	groups = kept

	details := make([]domain.DeliveryDetail, len(groups))

	// Deliveries are independent network calls; fan them out on a bounded
	// pool. Writing each outcome into its own slot keeps the repository's
	// group order in the final result, and the WaitGroup is the barrier
	// that makes the run complete only once every delivery has resolved.
	var wg sync.WaitGroup
	sem := make(chan struct{}, n.workers)
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g domain.CustomerSecrets) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			details[i] = n.deliver(ctx, g, now)
		}(i, g)
	}
	wg.Wait()

	result := &domain.RunResult{Details: details}
	for _, d := range details {
		result.TotalCustomers++
		if d.Success {
			result.NotificationsSent++
		}
	}

	n.logger.Info("notification run complete",
		zap.Int("total_customers", result.TotalCustomers),
		zap.Int("notifications_sent", result.NotificationsSent),
	)
	return result, nil
}

// Preview returns the flat list of secrets currently inside the window.
// It is read-only: the dispatcher is never invoked.
func (n *Notifier) Preview(ctx context.Context, now time.Time) ([]*domain.Secret, error) {
	window := domain.NewWindow(now, n.horizonDays)
	secrets, err := n.secrets.FindExpiring(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("fetch expiring secrets: %w", err)
	}
	return secrets, nil
}

func (n *Notifier) deliver(ctx context.Context, g domain.CustomerSecrets, now time.Time) domain.DeliveryDetail {
	detail := domain.DeliveryDetail{
		CustomerID:   g.Customer.ID,
		CustomerName: g.Customer.Name,
		SecretsCount: len(g.Secrets),
	}

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			n.logger.Warn("delivery skipped: context cancelled while rate limited",
				zap.String("customer_id", g.Customer.ID))
			n.onFailed()
			return detail
		}
	}

	msg := teams.Render(g.Customer.Name, g.Secrets, now, n.baseURL)

	start := time.Now()
	outcome := n.dispatcher.Deliver(ctx, g.Customer.WebhookURL, msg)
	elapsed := time.Since(start)

	detail.Success = outcome.Success
	if outcome.Success {
		n.onDelivered(elapsed)
		n.logger.Info("notification delivered",
			zap.String("customer_id", g.Customer.ID),
			zap.String("customer_name", g.Customer.Name),
			zap.Int("secrets", len(g.Secrets)),
			zap.Duration("latency", elapsed),
		)
	} else {
		n.onFailed()
		n.logger.Warn("notification delivery failed",
			zap.String("customer_id", g.Customer.ID),
			zap.String("customer_name", g.Customer.Name),
			zap.Int("status", outcome.Status),
			zap.Error(outcome.Err),
		)
	}
	return detail
}
