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

const blocknativeBaseURL = "https://api.blocknative.com"

// Confidence levels Blocknative publishes that we map onto fee tiers.
const (
	blocknativeSlowConfidence     = 70
	blocknativeStandardConfidence = 80
	blocknativeFastConfidence     = 95
)

type BlocknativeGasProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewBlocknativeGasProvider(tracer trace.Tracer, apiKey string) *BlocknativeGasProvider {
	return &BlocknativeGasProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: blocknativeBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

func (p *BlocknativeGasProvider) Name() string { return "blocknative" }

func (p *BlocknativeGasProvider) FetchGas(ctx context.Context) (*domain.GasQuote, error) {
	_, span := p.tracer.Start(ctx, "blocknative.fetch-gas")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/gasprices/blockprices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("blocknative error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		BlockPrices []struct {
			EstimatedPrices []struct {
				Confidence   int      `json:"confidence"`
				Price        Flexible `json:"price"`
				MaxFeePerGas Flexible `json:"maxFeePerGas"`
			} `json:"estimatedPrices"`
		} `json:"blockPrices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, incompletef("decode blocknative block prices")
	}
	if len(payload.BlockPrices) == 0 || len(payload.BlockPrices[0].EstimatedPrices) == 0 {
		return nil, incompletef("blocknative payload has no block prices")
	}

	tiers := map[int]float64{}
	for _, est := range payload.BlockPrices[0].EstimatedPrices {
		fee := est.MaxFeePerGas.Float()
		if fee <= 0 {
			fee = est.Price.Float()
		}
		tiers[est.Confidence] = fee
	}

	slow, okSlow := tiers[blocknativeSlowConfidence]
	standard, okStd := tiers[blocknativeStandardConfidence]
	fast, okFast := tiers[blocknativeFastConfidence]
	if !okSlow || !okStd || !okFast || standard <= 0 {
		return nil, incompletef("blocknative payload missing confidence tiers")
	}

	return &domain.GasQuote{
		Blockchain: "ethereum",
		Slow:       slow,
		Standard:   standard,
		Fast:       fast,
		Unit:       domain.UnitGwei,
		Source:     p.Name(),
		ObservedAt: time.Now().UTC(),
	}, nil
}
