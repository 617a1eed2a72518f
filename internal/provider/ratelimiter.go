package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by providers that throttle us
// (CoinGecko in particular).
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	capacity int
	interval time.Duration
	last     time.Time
}

// NewRateLimiter allows capacity calls, refilling one token per interval.
func NewRateLimiter(capacity int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   capacity,
		capacity: capacity,
		interval: interval,
		last:     time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}
}

func (r *RateLimiter) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	refill := int(now.Sub(r.last) / r.interval)
	if refill > 0 {
		r.tokens += refill
		if r.tokens > r.capacity {
			r.tokens = r.capacity
		}
		r.last = r.last.Add(time.Duration(refill) * r.interval)
	}
	if r.tokens <= 0 {
		return false
	}
	r.tokens--
	return true
}
