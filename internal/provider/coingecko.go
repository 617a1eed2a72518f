package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider is the primary source for spot prices, global market
// stats, and trending tokens.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a provider with built-in rate limiting.
// The free tier allows roughly 8 requests per minute.
func NewCoinGeckoProvider(tracer trace.Tracer, apiKey string) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: coingeckoBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

// FetchSpotPrices fetches current prices for the given symbols in one call.
func (p *CoinGeckoProvider) FetchSpotPrices(ctx context.Context, symbols []string) (map[string]*domain.SpotPrice, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-spot-prices")
	defer span.End()

	ids := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if id, ok := domain.CoinGeckoID[sym]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no supported symbols in %v", symbols)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		p.baseURL, strings.Join(ids, ","))

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch spot prices: %w", err)
	}

	// Shape: {"bitcoin": {"usd": 97000, "usd_24h_change": 2.34}, ...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, incompletef("parse spot prices")
	}
	if len(raw) == 0 {
		return nil, incompletef("spot price payload is empty")
	}

	now := time.Now().UTC()
	result := make(map[string]*domain.SpotPrice, len(raw))
	for cgID, data := range raw {
		symbol, ok := domain.CoinGeckoIDToSymbol[cgID]
		if !ok {
			continue
		}
		result[symbol] = &domain.SpotPrice{
			Symbol:       symbol,
			PriceUSD:     data["usd"],
			Change24hPct: data["usd_24h_change"],
			ObservedAt:   now,
		}
	}
	return result, nil
}

// FetchGlobal fetches the global market snapshot.
func (p *CoinGeckoProvider) FetchGlobal(ctx context.Context) (*domain.GlobalMarketSnapshot, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-global")
	defer span.End()

	body, err := p.doRequest(ctx, p.baseURL+"/global")
	if err != nil {
		return nil, fmt.Errorf("fetch global market: %w", err)
	}

	var raw struct {
		Data struct {
			TotalMarketCap      map[string]float64 `json:"total_market_cap"`
			TotalVolume         map[string]float64 `json:"total_volume"`
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, incompletef("parse global market")
	}
	if raw.Data.TotalMarketCap["usd"] <= 0 || raw.Data.MarketCapPercentage["btc"] <= 0 {
		return nil, incompletef("global market payload missing usd totals")
	}

	return &domain.GlobalMarketSnapshot{
		TotalMarketCapUSD: raw.Data.TotalMarketCap["usd"],
		TotalVolumeUSD:    raw.Data.TotalVolume["usd"],
		BTCDominancePct:   raw.Data.MarketCapPercentage["btc"],
		ETHDominancePct:   raw.Data.MarketCapPercentage["eth"],
		ObservedAt:        time.Now().UTC(),
	}, nil
}

// FetchTrending fetches trending search tokens plus the day's top gainers
// and the top five coins by market cap, grouped for the dashboard.
func (p *CoinGeckoProvider) FetchTrending(ctx context.Context) ([]*domain.TrendingToken, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-trending")
	defer span.End()

	tokens, err := p.fetchTrendingSearches(ctx)
	if err != nil {
		return nil, err
	}

	markets, err := p.fetchTopMarkets(ctx, 100)
	if err != nil {
		// Trending searches alone are still a usable result.
		return tokens, nil
	}

	for i, m := range markets {
		if i >= 5 {
			break
		}
		tokens = append(tokens, &domain.TrendingToken{
			TokenID:       m.ID,
			Symbol:        strings.ToUpper(m.Symbol),
			Name:          m.Name,
			Rank:          i + 1,
			MarketCapRank: m.MarketCapRank,
			Group:         domain.GroupTop5,
			PriceUSD:      m.CurrentPrice,
			Change24hPct:  m.PriceChange24h,
		})
	}

	sort.Slice(markets, func(i, j int) bool {
		return markets[i].PriceChange24h > markets[j].PriceChange24h
	})
	for i, m := range markets {
		if i >= 5 {
			break
		}
		tokens = append(tokens, &domain.TrendingToken{
			TokenID:       m.ID,
			Symbol:        strings.ToUpper(m.Symbol),
			Name:          m.Name,
			Rank:          i + 1,
			MarketCapRank: m.MarketCapRank,
			Group:         domain.GroupGainer,
			PriceUSD:      m.CurrentPrice,
			Change24hPct:  m.PriceChange24h,
		})
	}

	return tokens, nil
}

// StablecoinDominancePct returns the combined market-cap share of the major
// stablecoins, one of the stress-index inputs.
func (p *CoinGeckoProvider) StablecoinDominancePct(ctx context.Context, totalMarketCapUSD float64) (float64, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-stablecoin-dominance")
	defer span.End()

	if totalMarketCapUSD <= 0 {
		return 0, fmt.Errorf("total market cap required")
	}

	url := p.baseURL + "/coins/markets?vs_currency=usd&ids=tether,usd-coin,dai"
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch stablecoin markets: %w", err)
	}

	var rows []struct {
		MarketCap float64 `json:"market_cap"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, incompletef("parse stablecoin markets")
	}
	if len(rows) == 0 {
		return 0, incompletef("stablecoin markets payload is empty")
	}

	var capSum float64
	for _, r := range rows {
		capSum += r.MarketCap
	}
	return capSum / totalMarketCapUSD * 100, nil
}

type marketRow struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCapRank  int     `json:"market_cap_rank"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

func (p *CoinGeckoProvider) fetchTopMarkets(ctx context.Context, perPage int) ([]marketRow, error) {
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1", p.baseURL, perPage)
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch top markets: %w", err)
	}

	var rows []marketRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, incompletef("parse top markets")
	}
	if len(rows) == 0 {
		return nil, incompletef("top markets payload is empty")
	}
	return rows, nil
}

func (p *CoinGeckoProvider) fetchTrendingSearches(ctx context.Context) ([]*domain.TrendingToken, error) {
	body, err := p.doRequest(ctx, p.baseURL+"/search/trending")
	if err != nil {
		return nil, fmt.Errorf("fetch trending searches: %w", err)
	}

	var raw struct {
		Coins []struct {
			Item struct {
				ID            string `json:"id"`
				Symbol        string `json:"symbol"`
				Name          string `json:"name"`
				MarketCapRank int    `json:"market_cap_rank"`
			} `json:"item"`
		} `json:"coins"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, incompletef("parse trending searches")
	}
	if len(raw.Coins) == 0 {
		return nil, incompletef("trending payload has no coins")
	}

	tokens := make([]*domain.TrendingToken, 0, len(raw.Coins))
	for i, c := range raw.Coins {
		tokens = append(tokens, &domain.TrendingToken{
			TokenID:       c.Item.ID,
			Symbol:        strings.ToUpper(c.Item.Symbol),
			Name:          c.Item.Name,
			Rank:          i + 1,
			MarketCapRank: c.Item.MarketCapRank,
			Group:         domain.GroupTrending,
		})
	}
	return tokens, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
