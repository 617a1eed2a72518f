package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubMarketRefresher struct {
	gasCalls         atomic.Int32
	spotCalls        atomic.Int32
	globalCalls      atomic.Int32
	sentimentCalls   atomic.Int32
	trendingCalls    atomic.Int32
	derivativesCalls atomic.Int32
}

func (s *stubMarketRefresher) RefreshGas(context.Context) error {
	s.gasCalls.Add(1)
	return nil
}

func (s *stubMarketRefresher) RefreshSpotPrices(context.Context) error {
	s.spotCalls.Add(1)
	return nil
}

func (s *stubMarketRefresher) RefreshGlobal(context.Context) error {
	s.globalCalls.Add(1)
	return nil
}

func (s *stubMarketRefresher) RefreshSentiment(context.Context) error {
	s.sentimentCalls.Add(1)
	return nil
}

func (s *stubMarketRefresher) RefreshTrending(context.Context) error {
	s.trendingCalls.Add(1)
	return nil
}

func (s *stubMarketRefresher) RefreshDerivatives(context.Context) error {
	s.derivativesCalls.Add(1)
	return nil
}

type stubNewsRefresher struct {
	calls atomic.Int32
}

func (s *stubNewsRefresher) RefreshNews(context.Context) error {
	s.calls.Add(1)
	return nil
}

func TestNewRefreshPollerIntervals(t *testing.T) {
	poller := NewRefreshPoller(testTracer, &stubMarketRefresher{}, nil, 30, 180, 300)
	if poller.gasInterval != 30*time.Second {
		t.Fatalf("expected 30s gas interval, got %v", poller.gasInterval)
	}
	if poller.spotInterval != 180*time.Second {
		t.Fatalf("expected 180s spot interval, got %v", poller.spotInterval)
	}
	if poller.globalInterval != 300*time.Second {
		t.Fatalf("expected 300s global interval, got %v", poller.globalInterval)
	}
}

func TestRefreshPollerRunsGasImmediately(t *testing.T) {
	t.Parallel()

	stub := &stubMarketRefresher{}
	poller := NewRefreshPoller(testTracer, stub, nil, 1, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	// Only the gas loop starts without a stagger delay.
	eventually(t, func() bool { return stub.gasCalls.Load() > 0 })
	cancel()
}

func TestRefreshPollerStopsOnCancel(t *testing.T) {
	t.Parallel()

	stub := &stubMarketRefresher{}
	poller := NewRefreshPoller(testTracer, stub, &stubNewsRefresher{}, 1, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return stub.gasCalls.Load() > 0 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPollLoopRetriesAfterError(t *testing.T) {
	t.Parallel()

	poller := NewRefreshPoller(testTracer, &stubMarketRefresher{}, nil, 1, 1, 1)

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go poller.pollLoop(ctx, "test", 0, 10*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return context.DeadlineExceeded
	})

	// Errors are logged and the loop keeps ticking.
	eventually(t, func() bool { return calls.Load() >= 2 })
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
