package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestMempoolFetchGas(t *testing.T) {
	t.Parallel()

	provider := NewMempoolGasProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example/")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.HasSuffix(req.URL.Path, "/api/v1/fees/recommended") {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			return jsonResponse(http.StatusOK, map[string]float64{
				"fastestFee":  9,
				"halfHourFee": 4,
				"hourFee":     2,
			}), nil
		}),
	}

	quote, err := provider.FetchGas(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Blockchain != "bitcoin" || quote.Unit != domain.UnitSatVByte {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.Slow != 2 || quote.Standard != 4 || quote.Fast != 9 {
		t.Fatalf("unexpected tiers: %+v", quote)
	}
	if quote.Source != "mempool.space" {
		t.Fatalf("unexpected source: %s", quote.Source)
	}
}

func TestMempoolDefaultBaseURL(t *testing.T) {
	t.Parallel()

	provider := NewMempoolGasProvider(trace.NewNoopTracerProvider().Tracer("test"), "  ")
	if provider.baseURL != "https://mempool.space" {
		t.Fatalf("unexpected base URL: %s", provider.baseURL)
	}
}

func TestMempoolZeroFees(t *testing.T) {
	t.Parallel()

	provider := NewMempoolGasProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]float64{
				"fastestFee":  9,
				"halfHourFee": 0,
				"hourFee":     2,
			}), nil
		}),
	}

	_, err := provider.FetchGas(context.Background())
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}
