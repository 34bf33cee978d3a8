package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// DeliveryLimiter is a token bucket applied to outbound webhook POSTs.
// Teams incoming webhooks throttle aggressively; the limiter keeps a run
// over a large customer population from tripping that throttle.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type DeliveryLimiter struct {
	limiter *rate.Limiter
}

// New creates a DeliveryLimiter granting ratePerSec deliveries per second.
func New(ratePerSec int) *DeliveryLimiter {
	return &DeliveryLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// Wait blocks until the limiter grants a token.
// Called immediately before each webhook POST.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (dl *DeliveryLimiter) Wait(ctx context.Context) error {
	return dl.limiter.Wait(ctx)
}
