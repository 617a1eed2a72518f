package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func TestCoinGeckoFetchSpotPrices(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	provider.baseURL = "http://example"
	provider.limiter = NewRateLimiter(10, time.Millisecond)
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.Path, "/simple/price") {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if !strings.Contains(req.URL.RawQuery, "bitcoin") {
				t.Fatalf("expected bitcoin in query, got %s", req.URL.RawQuery)
			}
			return jsonResponse(http.StatusOK, map[string]map[string]float64{
				"bitcoin":  {"usd": 97000, "usd_24h_change": 2.34},
				"ethereum": {"usd": 3200, "usd_24h_change": -1.1},
			}), nil
		}),
	}

	result, err := provider.FetchSpotPrices(context.Background(), []string{"BTC", "ETH"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	btc, ok := result["BTC"]
	if !ok || btc.PriceUSD != 97000 || btc.Change24hPct != 2.34 {
		t.Fatalf("unexpected BTC price: %+v", btc)
	}
	eth, ok := result["ETH"]
	if !ok || eth.PriceUSD != 3200 {
		t.Fatalf("unexpected ETH price: %+v", eth)
	}
}

func TestCoinGeckoFetchSpotPricesNoSupportedSymbols(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	if _, err := provider.FetchSpotPrices(context.Background(), []string{"NOPE"}); err == nil {
		t.Fatal("expected error for unsupported symbols")
	}
}

func TestCoinGeckoFetchGlobal(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	provider.baseURL = "http://example"
	provider.limiter = NewRateLimiter(10, time.Millisecond)
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.HasSuffix(req.URL.Path, "/global") {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			return jsonResponse(http.StatusOK, map[string]any{
				"data": map[string]any{
					"total_market_cap":      map[string]float64{"usd": 3.4e12},
					"total_volume":          map[string]float64{"usd": 1.2e11},
					"market_cap_percentage": map[string]float64{"btc": 58.2, "eth": 11.4},
				},
			}), nil
		}),
	}

	snap, err := provider.FetchGlobal(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TotalMarketCapUSD != 3.4e12 || snap.BTCDominancePct != 58.2 || snap.ETHDominancePct != 11.4 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestCoinGeckoFetchGlobalIncomplete(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	provider.baseURL = "http://example"
	provider.limiter = NewRateLimiter(10, time.Millisecond)
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"data": map[string]any{}}), nil
		}),
	}

	_, err := provider.FetchGlobal(context.Background())
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestCoinGeckoFetchTrendingGroups(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	provider.baseURL = "http://example"
	provider.limiter = NewRateLimiter(20, time.Millisecond)
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			switch {
			case strings.Contains(req.URL.Path, "/search/trending"):
				return jsonResponse(http.StatusOK, map[string]any{
					"coins": []map[string]any{
						{"item": map[string]any{"id": "pepe", "symbol": "pepe", "name": "Pepe", "market_cap_rank": 40}},
						{"item": map[string]any{"id": "sui", "symbol": "sui", "name": "Sui", "market_cap_rank": 18}},
					},
				}), nil
			case strings.Contains(req.URL.Path, "/coins/markets"):
				return jsonResponse(http.StatusOK, []map[string]any{
					{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "current_price": 97000.0, "market_cap_rank": 1, "price_change_percentage_24h": 1.2},
					{"id": "ethereum", "symbol": "eth", "name": "Ethereum", "current_price": 3200.0, "market_cap_rank": 2, "price_change_percentage_24h": 5.5},
				}), nil
			default:
				t.Fatalf("unexpected path: %s", req.URL.Path)
				return nil, nil
			}
		}),
	}

	tokens, err := provider.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := map[domain.TokenGroup]int{}
	for _, tok := range tokens {
		counts[tok.Group]++
	}
	if counts[domain.GroupTrending] != 2 {
		t.Fatalf("expected 2 trending tokens, got %d", counts[domain.GroupTrending])
	}
	if counts[domain.GroupTop5] != 2 || counts[domain.GroupGainer] != 2 {
		t.Fatalf("unexpected group counts: %+v", counts)
	}
	if tokens[0].Symbol != "PEPE" {
		t.Fatalf("expected uppercased symbol, got %s", tokens[0].Symbol)
	}

	// Gainers sort by 24h change, so ETH outranks BTC there.
	for _, tok := range tokens {
		if tok.Group == domain.GroupGainer && tok.Rank == 1 && tok.Symbol != "ETH" {
			t.Fatalf("expected ETH as top gainer, got %s", tok.Symbol)
		}
	}
}

func TestCoinGeckoFetchTrendingSearchesOnly(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	provider.baseURL = "http://example"
	provider.limiter = NewRateLimiter(20, time.Millisecond)
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if strings.Contains(req.URL.Path, "/search/trending") {
				return jsonResponse(http.StatusOK, map[string]any{
					"coins": []map[string]any{
						{"item": map[string]any{"id": "pepe", "symbol": "pepe", "name": "Pepe", "market_cap_rank": 40}},
					},
				}), nil
			}
			return jsonResponse(http.StatusInternalServerError, map[string]string{"error": "boom"}), nil
		}),
	}

	tokens, err := provider.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("expected trending searches to carry the result, got %v", err)
	}
	if len(tokens) != 1 || tokens[0].Group != domain.GroupTrending {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
}

func TestCoinGeckoStablecoinDominancePct(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	provider.baseURL = "http://example"
	provider.limiter = NewRateLimiter(10, time.Millisecond)
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.RawQuery, "tether") {
				t.Fatalf("expected stablecoin ids in query, got %s", req.URL.RawQuery)
			}
			return jsonResponse(http.StatusOK, []map[string]any{
				{"market_cap": 120e9},
				{"market_cap": 40e9},
				{"market_cap": 5e9},
			}), nil
		}),
	}

	pct, err := provider.StablecoinDominancePct(context.Background(), 2.2e12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 165e9 / 2.2e12 * 100
	if pct != want {
		t.Fatalf("expected %.4f, got %.4f", want, pct)
	}
}

func TestCoinGeckoStablecoinDominanceNeedsTotal(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	if _, err := provider.StablecoinDominancePct(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero market cap")
	}
}

func TestCoinGeckoAPIKeyHeader(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "demo-key")
	provider.baseURL = "http://example"
	provider.limiter = NewRateLimiter(10, time.Millisecond)
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("x-cg-demo-api-key"); got != "demo-key" {
				t.Fatalf("expected API key header, got %q", got)
			}
			return jsonResponse(http.StatusOK, map[string]map[string]float64{
				"bitcoin": {"usd": 1},
			}), nil
		}),
	}

	if _, err := provider.FetchSpotPrices(context.Background(), []string{"BTC"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
