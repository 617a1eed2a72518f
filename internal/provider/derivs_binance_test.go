package provider

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestBinanceFetchDerivatives(t *testing.T) {
	t.Parallel()

	provider := NewBinanceDerivativesProvider(trace.NewNoopTracerProvider().Tracer("test"))
	provider.baseURL = "http://example"
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if got := req.URL.Query().Get("symbol"); got != "BTCUSDT" {
				t.Fatalf("unexpected symbol: %s", got)
			}
			switch {
			case strings.Contains(req.URL.Path, "/premiumIndex"):
				// Binance quotes these as strings.
				return jsonResponse(http.StatusOK, map[string]string{
					"markPrice":       "100000",
					"lastFundingRate": "0.0003",
				}), nil
			case strings.Contains(req.URL.Path, "/openInterestHist"):
				return jsonResponse(http.StatusOK, []map[string]string{
					{"sumOpenInterestValue": "8000000000"},
					{"sumOpenInterestValue": "10000000000"},
				}), nil
			case strings.Contains(req.URL.Path, "/openInterest"):
				return jsonResponse(http.StatusOK, map[string]string{
					"openInterest": "80000",
				}), nil
			case strings.Contains(req.URL.Path, "/ticker/24hr"):
				return jsonResponse(http.StatusOK, map[string]string{
					"highPrice": "104000",
					"lowPrice":  "98000",
					"lastPrice": "100000",
				}), nil
			default:
				t.Fatalf("unexpected path: %s", req.URL.Path)
				return nil, nil
			}
		}),
	}

	snap, err := provider.FetchDerivatives(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Symbol != "BTC" || snap.Source != "binance" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.FundingRatePct != 0.03 {
		t.Fatalf("expected funding 0.03%%, got %f", snap.FundingRatePct)
	}
	if snap.OpenInterestUSD != 80000*100000 {
		t.Fatalf("unexpected open interest: %f", snap.OpenInterestUSD)
	}
	if math.Abs(snap.OpenInterestDelta24hPct-25) > 1e-9 {
		t.Fatalf("expected 25%% OI delta, got %f", snap.OpenInterestDelta24hPct)
	}
	if math.Abs(snap.Volatility24hPct-6) > 1e-9 {
		t.Fatalf("expected 6%% range, got %f", snap.Volatility24hPct)
	}
}

func TestBinanceDegradesWithoutHistory(t *testing.T) {
	t.Parallel()

	provider := NewBinanceDerivativesProvider(trace.NewNoopTracerProvider().Tracer("test"))
	provider.baseURL = "http://example"
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			switch {
			case strings.Contains(req.URL.Path, "/premiumIndex"):
				return jsonResponse(http.StatusOK, map[string]string{
					"markPrice":       "100000",
					"lastFundingRate": "0.0001",
				}), nil
			case strings.Contains(req.URL.Path, "/openInterestHist"),
				strings.Contains(req.URL.Path, "/ticker/24hr"):
				return jsonResponse(http.StatusServiceUnavailable, map[string]string{"msg": "down"}), nil
			case strings.Contains(req.URL.Path, "/openInterest"):
				return jsonResponse(http.StatusOK, map[string]string{"openInterest": "80000"}), nil
			default:
				t.Fatalf("unexpected path: %s", req.URL.Path)
				return nil, nil
			}
		}),
	}

	snap, err := provider.FetchDerivatives(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("optional endpoints should not fail the fetch: %v", err)
	}
	if snap.OpenInterestDelta24hPct != 0 || snap.Volatility24hPct != 0 {
		t.Fatalf("expected zero optional fields, got %+v", snap)
	}
}

func TestBinanceMissingMarkPrice(t *testing.T) {
	t.Parallel()

	provider := NewBinanceDerivativesProvider(trace.NewNoopTracerProvider().Tracer("test"))
	provider.baseURL = "http://example"
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]string{"markPrice": "0"}), nil
		}),
	}

	_, err := provider.FetchDerivatives(context.Background(), "BTC")
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}
