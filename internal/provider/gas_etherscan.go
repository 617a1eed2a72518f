package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const etherscanBaseURL = "https://api.etherscan.io/api"

// EtherscanGasProvider reads the Etherscan gas tracker. It is the primary
// Ethereum gas source; Blocknative is the failover.
type EtherscanGasProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewEtherscanGasProvider(tracer trace.Tracer, apiKey string) *EtherscanGasProvider {
	return &EtherscanGasProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: etherscanBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

func (p *EtherscanGasProvider) Name() string { return "etherscan" }

func (p *EtherscanGasProvider) FetchGas(ctx context.Context) (*domain.GasQuote, error) {
	_, span := p.tracer.Start(ctx, "etherscan.fetch-gas")
	defer span.End()

	q := url.Values{}
	q.Set("module", "gastracker")
	q.Set("action", "gasoracle")
	if p.apiKey != "" {
		q.Set("apikey", p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
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
		return nil, fmt.Errorf("etherscan error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Status string `json:"status"`
		Result struct {
			SafeGasPrice    Flexible `json:"SafeGasPrice"`
			ProposeGasPrice Flexible `json:"ProposeGasPrice"`
			FastGasPrice    Flexible `json:"FastGasPrice"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, incompletef("decode etherscan gas oracle")
	}
	if payload.Status != "1" || payload.Result.ProposeGasPrice.Float() <= 0 {
		return nil, incompletef("etherscan gas oracle status=%s", payload.Status)
	}

	return &domain.GasQuote{
		Blockchain: "ethereum",
		Slow:       payload.Result.SafeGasPrice.Float(),
		Standard:   payload.Result.ProposeGasPrice.Float(),
		Fast:       payload.Result.FastGasPrice.Float(),
		Unit:       domain.UnitGwei,
		Source:     p.Name(),
		ObservedAt: time.Now().UTC(),
	}, nil
}
