package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const binanceFuturesBaseURL = "https://fapi.binance.com"

// BinanceDerivativesProvider samples the BTC perpetual on Binance futures:
// funding rate, open interest (with 24h delta), and a 24h range proxy for
// volatility. Liquidation totals are not exposed on the public REST API, so
// LiquidationsUSD24h stays zero and the stress index renormalizes around it.
type BinanceDerivativesProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBinanceDerivativesProvider(tracer trace.Tracer) *BinanceDerivativesProvider {
	return &BinanceDerivativesProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: binanceFuturesBaseURL,
		tracer:  tracer,
	}
}

func (p *BinanceDerivativesProvider) Name() string { return "binance" }

func (p *BinanceDerivativesProvider) FetchDerivatives(ctx context.Context, symbol string) (*domain.DerivativesSnapshot, error) {
	_, span := p.tracer.Start(ctx, "binance.fetch-derivatives")
	defer span.End()

	pair := symbol + "USDT"

	var premium struct {
		MarkPrice       Flexible `json:"markPrice"`
		LastFundingRate Flexible `json:"lastFundingRate"`
	}
	if err := p.getJSON(ctx, "/fapi/v1/premiumIndex?symbol="+pair, &premium); err != nil {
		return nil, fmt.Errorf("fetch premium index: %w", err)
	}
	if premium.MarkPrice.Float() <= 0 {
		return nil, incompletef("binance premium index missing mark price")
	}

	var oi struct {
		OpenInterest Flexible `json:"openInterest"`
	}
	if err := p.getJSON(ctx, "/fapi/v1/openInterest?symbol="+pair, &oi); err != nil {
		return nil, fmt.Errorf("fetch open interest: %w", err)
	}

	var hist []struct {
		SumOpenInterestValue Flexible `json:"sumOpenInterestValue"`
	}
	oiDeltaPct := 0.0
	if err := p.getJSON(ctx, "/futures/data/openInterestHist?symbol="+pair+"&period=1d&limit=2", &hist); err == nil && len(hist) == 2 {
		prev := hist[0].SumOpenInterestValue.Float()
		curr := hist[1].SumOpenInterestValue.Float()
		if prev > 0 {
			oiDeltaPct = (curr - prev) / prev * 100
		}
	}

	var ticker struct {
		HighPrice Flexible `json:"highPrice"`
		LowPrice  Flexible `json:"lowPrice"`
		LastPrice Flexible `json:"lastPrice"`
	}
	volatilityPct := 0.0
	if err := p.getJSON(ctx, "/fapi/v1/ticker/24hr?symbol="+pair, &ticker); err == nil {
		last := ticker.LastPrice.Float()
		if last > 0 {
			volatilityPct = (ticker.HighPrice.Float() - ticker.LowPrice.Float()) / last * 100
		}
	}

	return &domain.DerivativesSnapshot{
		Symbol:                  symbol,
		FundingRatePct:          premium.LastFundingRate.Float() * 100,
		OpenInterestUSD:         oi.OpenInterest.Float() * premium.MarkPrice.Float(),
		OpenInterestDelta24hPct: oiDeltaPct,
		Volatility24hPct:        volatilityPct,
		Source:                  p.Name(),
		ObservedAt:              time.Now().UTC(),
	}, nil
}

func (p *BinanceDerivativesProvider) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("binance error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return incompletef("decode binance %s", path)
	}
	return nil
}
