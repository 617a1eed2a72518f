package provider

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsCapacity(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(3, time.Hour)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected context deadline while exhausted")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 5*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- limiter.Wait(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error after refill: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("limiter never refilled")
	}
}
