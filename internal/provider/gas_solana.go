package provider

import (
	"bytes"
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

// SolanaGasProvider derives priority-fee tiers from recent prioritization
// fees reported by a Solana RPC node (percentiles over the last ~150 slots).
type SolanaGasProvider struct {
	client *http.Client
	rpcURL string
	tracer trace.Tracer
}

func NewSolanaGasProvider(tracer trace.Tracer, rpcURL string) *SolanaGasProvider {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		rpcURL = "https://api.mainnet-beta.solana.com"
	}
	return &SolanaGasProvider{
		client: &http.Client{Timeout: 10 * time.Second},
		rpcURL: rpcURL,
		tracer: tracer,
	}
}

func (p *SolanaGasProvider) Name() string { return "solana-rpc" }

func (p *SolanaGasProvider) FetchGas(ctx context.Context) (*domain.GasQuote, error) {
	_, span := p.tracer.Start(ctx, "solana.fetch-prioritization-fees")
	defer span.End()

	rpcReq := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "getRecentPrioritizationFees",
		"params":  []any{},
	}
	body, err := json.Marshal(rpcReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("solana rpc error %d: %s", resp.StatusCode, string(raw))
	}

	var payload struct {
		Result []struct {
			Slot              int64   `json:"slot"`
			PrioritizationFee float64 `json:"prioritizationFee"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, incompletef("decode solana prioritization fees")
	}
	if len(payload.Result) == 0 {
		return nil, incompletef("solana rpc returned no fee samples")
	}

	fees := make([]float64, 0, len(payload.Result))
	for _, row := range payload.Result {
		fees = append(fees, row.PrioritizationFee)
	}
	sort.Float64s(fees)

	return &domain.GasQuote{
		Blockchain: "solana",
		Slow:       percentile(fees, 0.25),
		Standard:   percentile(fees, 0.50),
		Fast:       percentile(fees, 0.90),
		Unit:       domain.UnitLamport,
		Source:     p.Name(),
		ObservedAt: time.Now().UTC(),
	}, nil
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
