package secapi

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter paces requests to the upstream API. Every successful
// response raises the rate by 20% (capped at twice the configured rate); a
// 429 halves it (floored at a quarter of the configured rate).
type AdaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	base    rate.Limit
	current rate.Limit
}

// NewAdaptiveLimiter returns a limiter starting at rps requests per second.
func NewAdaptiveLimiter(rps float64) *AdaptiveLimiter {
	if rps <= 0 {
		rps = defaultRateLimit
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(limit, burst),
		base:    limit,
		current: limit,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess speeds up after an accepted request.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.set(min(a.current*1.2, a.base*2))
}

// OnRateLimit slows down after a 429.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.set(max(a.current*0.5, a.base/4))
	zap.L().Warn("secapi: rate limited, slowing down",
		zap.Float64("rate", float64(a.current)),
	)
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *AdaptiveLimiter) set(r rate.Limit) {
	a.current = r
	a.limiter.SetLimit(r)
}
