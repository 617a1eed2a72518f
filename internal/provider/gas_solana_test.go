package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestSolanaFetchGasPercentiles(t *testing.T) {
	t.Parallel()

	provider := NewSolanaGasProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			var rpc struct {
				Method string `json:"method"`
			}
			if err := json.NewDecoder(req.Body).Decode(&rpc); err != nil {
				t.Fatalf("decode rpc request: %v", err)
			}
			if rpc.Method != "getRecentPrioritizationFees" {
				t.Fatalf("unexpected method: %s", rpc.Method)
			}
			rows := make([]map[string]any, 0, 100)
			for i := 1; i <= 100; i++ {
				rows = append(rows, map[string]any{"slot": 1000 + i, "prioritizationFee": float64(i * 100)})
			}
			return jsonResponse(http.StatusOK, map[string]any{"result": rows}), nil
		}),
	}

	quote, err := provider.FetchGas(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Blockchain != "solana" || quote.Unit != domain.UnitLamport {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	// Fees 100..10000; p25/p50/p90 over the sorted samples.
	if quote.Slow != 2500 || quote.Standard != 5000 || quote.Fast != 9000 {
		t.Fatalf("unexpected tiers: %+v", quote)
	}
	if !quote.TierOrderOK() {
		t.Fatal("expected ordered tiers")
	}
}

func TestSolanaFetchGasNoSamples(t *testing.T) {
	t.Parallel()

	provider := NewSolanaGasProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"result": []any{}}), nil
		}),
	}

	_, err := provider.FetchGas(context.Background())
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestSolanaDefaultRPCURL(t *testing.T) {
	t.Parallel()

	provider := NewSolanaGasProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	if provider.rpcURL != "https://api.mainnet-beta.solana.com" {
		t.Fatalf("unexpected rpc URL: %s", provider.rpcURL)
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	sorted := []float64{1, 2, 3, 4, 5}
	if got := percentile(sorted, 0.5); got != 3 {
		t.Fatalf("expected median 3, got %f", got)
	}
	if got := percentile(sorted, 0); got != 1 {
		t.Fatalf("expected min 1, got %f", got)
	}
	if got := percentile(sorted, 1); got != 5 {
		t.Fatalf("expected max 5, got %f", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Fatalf("expected 0 for empty slice, got %f", got)
	}
}
