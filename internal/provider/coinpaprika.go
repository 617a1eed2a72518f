package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coinpaprikaBaseURL = "https://api.coinpaprika.com/v1"

// CoinPaprikaProvider is the failover source for spot prices and global
// market stats when CoinGecko is down or rate limiting us.
type CoinPaprikaProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewCoinPaprikaProvider(tracer trace.Tracer) *CoinPaprikaProvider {
	return &CoinPaprikaProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: coinpaprikaBaseURL,
		tracer:  tracer,
	}
}

func (p *CoinPaprikaProvider) Name() string { return "coinpaprika" }

func (p *CoinPaprikaProvider) FetchGlobal(ctx context.Context) (*domain.GlobalMarketSnapshot, error) {
	_, span := p.tracer.Start(ctx, "coinpaprika.fetch-global")
	defer span.End()

	body, err := p.doRequest(ctx, p.baseURL+"/global")
	if err != nil {
		return nil, fmt.Errorf("fetch global market: %w", err)
	}

	var raw struct {
		MarketCapUSD        float64 `json:"market_cap_usd"`
		Volume24hUSD        float64 `json:"volume_24h_usd"`
		BitcoinDominancePct float64 `json:"bitcoin_dominance_percentage"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, incompletef("parse global market")
	}
	if raw.MarketCapUSD <= 0 || raw.BitcoinDominancePct <= 0 {
		return nil, incompletef("global market payload missing totals")
	}

	return &domain.GlobalMarketSnapshot{
		TotalMarketCapUSD: raw.MarketCapUSD,
		TotalVolumeUSD:    raw.Volume24hUSD,
		BTCDominancePct:   raw.BitcoinDominancePct,
		ObservedAt:        time.Now().UTC(),
	}, nil
}

// coinpaprikaID maps internal symbols to CoinPaprika ticker identifiers.
var coinpaprikaID = map[string]string{
	"BTC":  "btc-bitcoin",
	"ETH":  "eth-ethereum",
	"SOL":  "sol-solana",
	"TON":  "ton-toncoin",
	"XRP":  "xrp-xrp",
	"BNB":  "bnb-binance-coin",
	"ADA":  "ada-cardano",
	"DOGE": "doge-dogecoin",
	"DOT":  "dot-polkadot",
	"LINK": "link-chainlink",
}

func (p *CoinPaprikaProvider) FetchSpotPrices(ctx context.Context, symbols []string) (map[string]*domain.SpotPrice, error) {
	_, span := p.tracer.Start(ctx, "coinpaprika.fetch-spot-prices")
	defer span.End()

	wanted := make(map[string]string, len(symbols))
	for _, sym := range symbols {
		if id, ok := coinpaprikaID[sym]; ok {
			wanted[id] = sym
		}
	}
	if len(wanted) == 0 {
		return nil, fmt.Errorf("no supported symbols in %v", symbols)
	}

	body, err := p.doRequest(ctx, p.baseURL+"/tickers?quotes=USD")
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}

	var rows []struct {
		ID     string `json:"id"`
		Quotes struct {
			USD struct {
				Price           float64 `json:"price"`
				PercentChange24 float64 `json:"percent_change_24h"`
			} `json:"USD"`
		} `json:"quotes"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, incompletef("parse tickers")
	}
	if len(rows) == 0 {
		return nil, incompletef("ticker payload is empty")
	}

	now := time.Now().UTC()
	result := make(map[string]*domain.SpotPrice, len(wanted))
	for _, row := range rows {
		sym, ok := wanted[row.ID]
		if !ok {
			continue
		}
		result[sym] = &domain.SpotPrice{
			Symbol:       sym,
			PriceUSD:     row.Quotes.USD.Price,
			Change24hPct: row.Quotes.USD.PercentChange24,
			ObservedAt:   now,
		}
	}
	if len(result) == 0 {
		return nil, incompletef("ticker payload matched no requested symbols")
	}
	return result, nil
}

func (p *CoinPaprikaProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coinpaprika API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return io.ReadAll(resp.Body)
}
