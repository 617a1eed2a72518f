package service

import (
	"context"
	"errors"
	"log"

	"gaspulse/internal/cache"
	"gaspulse/internal/domain"
	"gaspulse/internal/fallback"
	"gaspulse/internal/fetcher"

	"go.opentelemetry.io/otel/trace"
)

// newsCategories are the feed filters the dashboard offers.
var newsCategories = []string{"all", "bitcoin", "ethereum", "altcoin", "defi"}

const defaultNewsLimit = 30

// NewsStore is the persisted article surface the service consumes.
type NewsStore interface {
	UpsertNews(ctx context.Context, articles []*domain.NewsArticle) error
	LatestNews(ctx context.Context, category string, limit int) ([]*domain.NewsArticle, error)
}

// NewsProvider fetches a category feed; providers are tried in order.
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, category string, limit int) ([]*domain.NewsArticle, error)
}

// NewsService serves deduplicated, sentiment-labeled news. Reads prefer
// the persisted store and fall through to live fetching; they never
// propagate upstream errors.
type NewsService struct {
	tracer    trace.Tracer
	store     NewsStore
	cache     *cache.TTLCache
	providers []NewsProvider
	scorer    ArticleScorer
}

func NewNewsService(
	tracer trace.Tracer,
	store NewsStore,
	ttlCache *cache.TTLCache,
	providers []NewsProvider,
	scorer ArticleScorer,
) *NewsService {
	return &NewsService{
		tracer:    tracer,
		store:     store,
		cache:     ttlCache,
		providers: providers,
		scorer:    scorer,
	}
}

// News returns the latest articles for a category, deduped by URL.
// Unknown categories behave as "all".
func (s *NewsService) News(ctx context.Context, category string, limit int) ([]*domain.NewsArticle, error) {
	ctx, span := s.tracer.Start(ctx, "news-service.news")
	defer span.End()

	category = normalizeNewsCategory(category)
	if limit <= 0 || limit > 100 {
		limit = defaultNewsLimit
	}

	if stored, err := s.store.LatestNews(ctx, category, limit); err != nil {
		log.Printf("news: store read error: %v", err)
	} else if len(stored) > 0 {
		return stored, nil
	}

	articles, err := cache.GetOrFetch(ctx, s.cache, domain.KindNewsFeed, category,
		func(ctx context.Context) (*[]*domain.NewsArticle, error) {
			fetched, _, err := fetcher.First(ctx, "news_feed/"+category, 0, s.sources(category, limit))
			return fetched, err
		})
	if err != nil {
		return fallback.News(), nil
	}

	deduped := dedupeByURL(*articles)
	ScoreArticles(ctx, s.scorer, deduped)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped, nil
}

// RefreshNews fetches every category, labels sentiment, and persists the
// articles. The URL primary key absorbs cross-category duplicates.
func (s *NewsService) RefreshNews(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "news-service.refresh-news")
	defer span.End()

	var errs []error
	total := 0
	for _, category := range newsCategories {
		fetched, source, err := fetcher.First(ctx, "news_feed/"+category, 0, s.sources(category, defaultNewsLimit))
		if err != nil {
			errs = append(errs, err)
			continue
		}

		articles := dedupeByURL(*fetched)
		ScoreArticles(ctx, s.scorer, articles)
		if err := s.store.UpsertNews(ctx, articles); err != nil {
			errs = append(errs, err)
			continue
		}
		total += len(articles)
		log.Printf("refreshed %d news articles for %s via %s", len(articles), category, source)
	}
	if total > 0 {
		return nil
	}
	return errors.Join(errs...)
}

func (s *NewsService) sources(category string, limit int) []fetcher.Source[[]*domain.NewsArticle] {
	sources := make([]fetcher.Source[[]*domain.NewsArticle], 0, len(s.providers))
	for _, p := range s.providers {
		p := p
		sources = append(sources, fetcher.Source[[]*domain.NewsArticle]{
			Name: p.Name(),
			Fetch: func(ctx context.Context) (*[]*domain.NewsArticle, error) {
				articles, err := p.FetchNews(ctx, category, limit)
				if err != nil {
					return nil, err
				}
				return &articles, nil
			},
		})
	}
	return sources
}

func normalizeNewsCategory(category string) string {
	for _, known := range newsCategories {
		if category == known {
			return category
		}
	}
	return "all"
}

func dedupeByURL(articles []*domain.NewsArticle) []*domain.NewsArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]*domain.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a == nil || a.URL == "" {
			continue
		}
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
