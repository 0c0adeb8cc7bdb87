// Package ratelimit provides an adaptive request rate limiter for outbound
// API clients. The rate creeps up while requests succeed and is cut back when
// the remote end signals overload.
//
// Example usage:
//
//	lim := ratelimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	if err := lim.Wait(ctx); err != nil {
//	    return err
//	}
//	resp, err := client.Do(req)
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter manages a rate limit that adjusts automatically based on
// request outcomes. Thread-safe.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates an AdaptiveLimiter.
//
//   - initial: starting requests per second
//   - min, max: allowed rate bounds
//   - stepUp: increment applied on success
//   - stepDown: multiplier applied on overload (e.g. 0.5 to halve)
func NewAdaptiveLimiter(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, maxInt(1, int(initial))),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is canceled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.limiter.Wait(ctx)
}

// Success nudges the rate up after a successful request. The increase is
// suppressed for a cooldown window after the last failure.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.adjustLimit(a.limiter.Limit() + a.stepUp)
	}
}

// Overloaded cuts the rate after a 429 or server error.
func (a *AdaptiveLimiter) Overloaded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjustLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjustLimit(newLimit rate.Limit) {
	if newLimit > a.maxLimit {
		newLimit = a.maxLimit
	} else if newLimit < a.minLimit {
		newLimit = a.minLimit
	}
	if newLimit != a.limiter.Limit() {
		a.limiter.SetLimit(newLimit)
		a.limiter.SetBurst(maxInt(1, int(newLimit)))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
