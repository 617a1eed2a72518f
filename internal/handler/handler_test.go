package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gaspulse/internal/domain"
	"gaspulse/internal/service"
	"gaspulse/internal/stress"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubMarket struct {
	gas          *domain.GasQuoteUSD
	prices       map[string]*domain.SpotPrice
	global       *domain.GlobalMarketSnapshot
	chart        []*domain.MarketCapPoint
	sentiment    *domain.SentimentIndex
	altseason    *domain.AltseasonIndex
	stress       *stress.Index
	trending     *service.TrendingGroups
	refreshErr   error
	refreshCalls int

	pricesSymbols []string
	chartDays     int
}

func (s *stubMarket) Gas(_ context.Context, _ string) (*domain.GasQuoteUSD, error) {
	return s.gas, nil
}

func (s *stubMarket) Prices(_ context.Context, symbols []string) (map[string]*domain.SpotPrice, error) {
	s.pricesSymbols = symbols
	return s.prices, nil
}

func (s *stubMarket) Global(_ context.Context) (*domain.GlobalMarketSnapshot, error) {
	return s.global, nil
}

func (s *stubMarket) MarketCapChart(_ context.Context, days int) ([]*domain.MarketCapPoint, error) {
	s.chartDays = days
	return s.chart, nil
}

func (s *stubMarket) FearGreed(_ context.Context) (*domain.SentimentIndex, error) {
	return s.sentiment, nil
}

func (s *stubMarket) Altseason(_ context.Context) (*domain.AltseasonIndex, error) {
	return s.altseason, nil
}

func (s *stubMarket) Stress(_ context.Context) (*stress.Index, error) {
	return s.stress, nil
}

func (s *stubMarket) Trending(_ context.Context) (*service.TrendingGroups, error) {
	return s.trending, nil
}

func (s *stubMarket) RefreshAll(_ context.Context) error {
	s.refreshCalls++
	return s.refreshErr
}

type stubNews struct {
	articles []*domain.NewsArticle
	category string
}

func (s *stubNews) News(_ context.Context, category string, _ int) ([]*domain.NewsArticle, error) {
	s.category = category
	return s.articles, nil
}

func newTestRouter(market MarketReader, news NewsReader, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(testTracer, market, news, token).RegisterRoutes(r)
	return r
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&stubMarket{}, &stubNews{}, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" || body["service"] != "gaspulse" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestGetGas(t *testing.T) {
	market := &stubMarket{gas: &domain.GasQuoteUSD{
		GasQuote: domain.GasQuote{Blockchain: "ethereum", Slow: 10, Standard: 15, Fast: 25, Unit: domain.UnitGwei, Source: "etherscan", ObservedAt: time.Now()},
	}}
	r := newTestRouter(market, &stubNews{}, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/gas/Ethereum", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var got domain.GasQuoteUSD
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Blockchain != "ethereum" || got.Standard != 15 {
		t.Fatalf("unexpected quote: %+v", got)
	}
}

func TestGetGasUnsupportedBlockchain(t *testing.T) {
	r := newTestRouter(&stubMarket{}, &stubNews{}, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/gas/dogecoin", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestGetPricesParsesCoinsQuery(t *testing.T) {
	market := &stubMarket{prices: map[string]*domain.SpotPrice{
		"BTC": {Symbol: "BTC", PriceUSD: 50000},
	}}
	r := newTestRouter(market, &stubNews{}, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/prices?coins=btc,%20eth", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if len(market.pricesSymbols) != 2 || market.pricesSymbols[0] != "BTC" || market.pricesSymbols[1] != "ETH" {
		t.Fatalf("coins query not normalized: %+v", market.pricesSymbols)
	}
}

func TestGetMarketChartDefaultsDays(t *testing.T) {
	market := &stubMarket{chart: []*domain.MarketCapPoint{}}
	r := newTestRouter(market, &stubNews{}, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/market/chart", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if market.chartDays != 7 {
		t.Fatalf("expected default 7 days, got %d", market.chartDays)
	}
}

func TestGetFearGreed(t *testing.T) {
	market := &stubMarket{sentiment: &domain.SentimentIndex{Value: 30, Classification: domain.ClassFear}}
	r := newTestRouter(market, &stubNews{}, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/feargreed", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var got domain.SentimentIndex
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Value != 30 || got.Classification != domain.ClassFear {
		t.Fatalf("unexpected index: %+v", got)
	}
}

func TestGetNewsNormalizesCategory(t *testing.T) {
	news := &stubNews{articles: []*domain.NewsArticle{}}
	r := newTestRouter(&stubMarket{}, news, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/news?category=Bitcoin", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if news.category != "bitcoin" {
		t.Fatalf("category not lowercased: %q", news.category)
	}
}

func TestPostRefreshRequiresBearerToken(t *testing.T) {
	market := &stubMarket{}
	r := newTestRouter(market, &stubNews{}, "sekrit")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic sekrit", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer sekrit", http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/refresh", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}

	// Rejected requests never reach the service.
	if market.refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", market.refreshCalls)
	}
}

func TestPostRefreshDisabledWithoutToken(t *testing.T) {
	market := &stubMarket{}
	r := newTestRouter(market, &stubNews{}, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer anything")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
	if market.refreshCalls != 0 {
		t.Fatal("refresh must not run when no token is configured")
	}
}

func TestPostRefreshWriteFailure(t *testing.T) {
	market := &stubMarket{refreshErr: context.DeadlineExceeded}
	r := newTestRouter(market, &stubNews{}, "sekrit")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/refresh", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}
