package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const cryptoPanicBaseURL = "https://cryptopanic.com/api/v1"

// CryptoPanicProvider is the primary news source. Requires an API token;
// without one the constructor still works but every fetch 401s and the
// failover falls through to RSS.
type CryptoPanicProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

// categoryCurrency maps our feed categories to CryptoPanic currency codes.
// The currencies parameter only takes asset codes, so the altcoin and defi
// categories (and "all") fetch unfiltered and rely on the broad feed.
var categoryCurrency = map[string]string{
	"bitcoin":  "BTC",
	"ethereum": "ETH",
}

func NewCryptoPanicProvider(tracer trace.Tracer, apiKey string) *CryptoPanicProvider {
	return &CryptoPanicProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: cryptoPanicBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

func (p *CryptoPanicProvider) Name() string { return "cryptopanic" }

func (p *CryptoPanicProvider) FetchNews(ctx context.Context, category string, limit int) ([]*domain.NewsArticle, error) {
	_, span := p.tracer.Start(ctx, "cryptopanic.fetch-news")
	defer span.End()

	q := url.Values{}
	q.Set("auth_token", p.apiKey)
	q.Set("public", "true")
	if code, ok := categoryCurrency[normalizeCategory(category)]; ok {
		q.Set("currencies", code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/posts/?"+q.Encode(), nil)
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
		return nil, fmt.Errorf("cryptopanic error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []struct {
			Title       string    `json:"title"`
			URL         string    `json:"url"`
			PublishedAt time.Time `json:"published_at"`
			Source      struct {
				Title  string `json:"title"`
				Domain string `json:"domain"`
			} `json:"source"`
			Metadata struct {
				Description string `json:"description"`
				Image       string `json:"image"`
			} `json:"metadata"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, incompletef("decode cryptopanic posts")
	}
	if len(payload.Results) == 0 {
		return nil, incompletef("cryptopanic returned no posts")
	}

	if limit <= 0 || limit > len(payload.Results) {
		limit = len(payload.Results)
	}

	articles := make([]*domain.NewsArticle, 0, limit)
	for _, row := range payload.Results[:limit] {
		title := strings.TrimSpace(row.Title)
		link := strings.TrimSpace(row.URL)
		if title == "" || link == "" {
			continue
		}
		source := row.Source.Title
		if source == "" {
			source = row.Source.Domain
		}
		publishedAt := row.PublishedAt
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		articles = append(articles, &domain.NewsArticle{
			Title:       title,
			Description: strings.TrimSpace(row.Metadata.Description),
			URL:         link,
			ImageURL:    strings.TrimSpace(row.Metadata.Image),
			Source:      source,
			PublishedAt: publishedAt.UTC(),
			Category:    normalizeCategory(category),
		})
	}
	if len(articles) == 0 {
		return nil, incompletef("cryptopanic posts all unusable")
	}
	return articles, nil
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return "all"
	}
	return category
}
