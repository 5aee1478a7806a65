package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// DeliveryLimiter is a token bucket applied ahead of every sink call so
// a drain cycle cannot hammer the push gateway faster than it accepts.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type DeliveryLimiter struct {
	limiter *rate.Limiter
}

// New creates a DeliveryLimiter granting ratePerSec deliveries per second.
// A non-positive rate disables limiting entirely.
func New(ratePerSec int) *DeliveryLimiter {
	if ratePerSec <= 0 {
		return &DeliveryLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &DeliveryLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until the limiter grants a token.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (l *DeliveryLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
