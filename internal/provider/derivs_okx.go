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

const okxBaseURL = "https://www.okx.com"

// OKXDerivativesProvider is the derivatives failover: funding rate and open
// interest for the USDT perpetual on OKX.
type OKXDerivativesProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewOKXDerivativesProvider(tracer trace.Tracer) *OKXDerivativesProvider {
	return &OKXDerivativesProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: okxBaseURL,
		tracer:  tracer,
	}
}

func (p *OKXDerivativesProvider) Name() string { return "okx" }

func (p *OKXDerivativesProvider) FetchDerivatives(ctx context.Context, symbol string) (*domain.DerivativesSnapshot, error) {
	_, span := p.tracer.Start(ctx, "okx.fetch-derivatives")
	defer span.End()

	instID := symbol + "-USDT-SWAP"

	var funding struct {
		Data []struct {
			FundingRate Flexible `json:"fundingRate"`
		} `json:"data"`
	}
	if err := p.getJSON(ctx, "/api/v5/public/funding-rate?instId="+instID, &funding); err != nil {
		return nil, fmt.Errorf("fetch funding rate: %w", err)
	}
	if len(funding.Data) == 0 {
		return nil, incompletef("okx funding payload has no rows")
	}

	var oi struct {
		Data []struct {
			OpenInterestCcy Flexible `json:"oiCcy"`
			OpenInterestUSD Flexible `json:"oiUsd"`
		} `json:"data"`
	}
	if err := p.getJSON(ctx, "/api/v5/public/open-interest?instId="+instID, &oi); err != nil {
		return nil, fmt.Errorf("fetch open interest: %w", err)
	}
	if len(oi.Data) == 0 {
		return nil, incompletef("okx open interest payload has no rows")
	}

	return &domain.DerivativesSnapshot{
		Symbol:          symbol,
		FundingRatePct:  funding.Data[0].FundingRate.Float() * 100,
		OpenInterestUSD: oi.Data[0].OpenInterestUSD.Float(),
		Source:          p.Name(),
		ObservedAt:      time.Now().UTC(),
	}, nil
}

func (p *OKXDerivativesProvider) getJSON(ctx context.Context, path string, out any) error {
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
		return fmt.Errorf("okx error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return incompletef("decode okx %s", path)
	}
	return nil
}
