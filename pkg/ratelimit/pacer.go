// Package ratelimit implements client-side request pacing.
// Testmo publishes no rate-limit headers, so multi-request operations
// (auto-pagination, batch writes) keep a fixed delay between consecutive
// requests to respect the service's implicit limits.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the delay between consecutive paced requests.
const DefaultInterval = 500 * time.Millisecond

// Pacer enforces a fixed interval between consecutive calls.
//
// The first Wait passes immediately; every later Wait blocks until the
// interval since the previous pass has elapsed. Waits are context-aware: a
// cancelled context abandons the pending delay.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a Pacer with the given interval between calls.
// A non-positive interval yields a Pacer that never blocks.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the pacer permits the next call or ctx is done.
// A nil Pacer never blocks.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
