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

// MempoolGasProvider reads Bitcoin fee recommendations from mempool.space.
type MempoolGasProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewMempoolGasProvider(tracer trace.Tracer, baseURL string) *MempoolGasProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://mempool.space"
	}
	return &MempoolGasProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

func (p *MempoolGasProvider) Name() string { return "mempool.space" }

func (p *MempoolGasProvider) FetchGas(ctx context.Context) (*domain.GasQuote, error) {
	_, span := p.tracer.Start(ctx, "mempool.fetch-fees")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/v1/fees/recommended", nil)
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
		return nil, fmt.Errorf("mempool.space error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		FastestFee  float64 `json:"fastestFee"`
		HalfHourFee float64 `json:"halfHourFee"`
		HourFee     float64 `json:"hourFee"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, incompletef("decode mempool.space fees")
	}
	if payload.FastestFee <= 0 || payload.HalfHourFee <= 0 || payload.HourFee <= 0 {
		return nil, incompletef("mempool.space fees are zero")
	}

	return &domain.GasQuote{
		Blockchain: "bitcoin",
		Slow:       payload.HourFee,
		Standard:   payload.HalfHourFee,
		Fast:       payload.FastestFee,
		Unit:       domain.UnitSatVByte,
		Source:     p.Name(),
		ObservedAt: time.Now().UTC(),
	}, nil
}
