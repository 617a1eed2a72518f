package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"gaspulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// rssFeeds maps a news category to its fallback feed.
var rssFeeds = map[string]string{
	"all":      "https://www.coindesk.com/arc/outboundfeeds/rss/",
	"bitcoin":  "https://cointelegraph.com/rss/tag/bitcoin",
	"ethereum": "https://cointelegraph.com/rss/tag/ethereum",
	"altcoin":  "https://cointelegraph.com/rss/tag/altcoin",
	"defi":     "https://cointelegraph.com/rss/tag/defi",
}

// RSSNewsProvider is the keyless news failover: public RSS feeds from the
// major crypto outlets.
type RSSNewsProvider struct {
	client *http.Client
	feeds  map[string]string
	tracer trace.Tracer
}

func NewRSSNewsProvider(tracer trace.Tracer) *RSSNewsProvider {
	return &RSSNewsProvider{
		client: &http.Client{Timeout: 15 * time.Second},
		feeds:  rssFeeds,
		tracer: tracer,
	}
}

func (p *RSSNewsProvider) Name() string { return "rss" }

func (p *RSSNewsProvider) FetchNews(ctx context.Context, category string, limit int) ([]*domain.NewsArticle, error) {
	_, span := p.tracer.Start(ctx, "rss.fetch-news")
	defer span.End()

	category = normalizeCategory(category)
	feedURL, ok := p.feeds[category]
	if !ok {
		feedURL = p.feeds["all"]
	}
	if limit <= 0 {
		limit = 30
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rss fetch error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				PubDate     string `xml:"pubDate"`
				Enclosure   struct {
					URL string `xml:"url,attr"`
				} `xml:"enclosure"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, incompletef("decode rss payload")
	}
	if len(rss.Channel.Items) == 0 {
		return nil, incompletef("rss feed has no items")
	}

	source := strings.TrimSpace(rss.Channel.Title)
	if source == "" {
		source = feedURL
	}

	articles := make([]*domain.NewsArticle, 0, limit)
	for _, item := range rss.Channel.Items {
		if len(articles) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		publishedAt := parseRSSDate(item.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		articles = append(articles, &domain.NewsArticle{
			Title:       title,
			Description: truncate(htmlStrip(item.Description), 420),
			URL:         link,
			ImageURL:    strings.TrimSpace(item.Enclosure.URL),
			Source:      source,
			PublishedAt: publishedAt,
			Category:    category,
		})
	}
	if len(articles) == 0 {
		return nil, incompletef("rss items all unusable")
	}
	return articles, nil
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
