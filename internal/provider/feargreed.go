package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const fearGreedBaseURL = "https://api.alternative.me"

// FearGreedProvider consumes the alternative.me Fear & Greed index as-is.
// The classification is derived from the value with our canonical buckets
// rather than trusting the upstream label.
type FearGreedProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewFearGreedProvider(tracer trace.Tracer) *FearGreedProvider {
	return &FearGreedProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: fearGreedBaseURL,
		tracer:  tracer,
	}
}

func (p *FearGreedProvider) Name() string { return "alternative.me" }

func (p *FearGreedProvider) FetchSentiment(ctx context.Context) (*domain.SentimentIndex, error) {
	_, span := p.tracer.Start(ctx, "feargreed.fetch-latest")
	defer span.End()

	url := strings.TrimRight(p.baseURL, "/") + "/fng/?limit=1"
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
		return nil, fmt.Errorf("fear & greed API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []struct {
			Value     string `json:"value"`
			Timestamp string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, incompletef("decode fear & greed response")
	}
	if len(payload.Data) == 0 {
		return nil, incompletef("fear & greed response has no rows")
	}

	row := payload.Data[0]
	value, err := strconv.Atoi(strings.TrimSpace(row.Value))
	if err != nil || value < 0 || value > 100 {
		return nil, incompletef("fear & greed value %q out of range", row.Value)
	}

	observed := time.Now().UTC()
	if ts, err := strconv.ParseInt(strings.TrimSpace(row.Timestamp), 10, 64); err == nil && ts > 0 {
		if ts > 1_000_000_000_000 {
			ts = ts / 1000
		}
		observed = time.Unix(ts, 0).UTC()
	}

	return &domain.SentimentIndex{
		Value:          value,
		Classification: domain.ClassifySentiment(value),
		ObservedAt:     observed,
	}, nil
}
