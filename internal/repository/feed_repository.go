package repository

import (
	"context"
	"time"

	"gaspulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const createFeedTables = `
CREATE TABLE IF NOT EXISTS news_articles (
    url          TEXT        PRIMARY KEY,
    title        TEXT        NOT NULL,
    description  TEXT        NOT NULL DEFAULT '',
    image_url    TEXT        NOT NULL DEFAULT '',
    source       TEXT        NOT NULL,
    category     TEXT        NOT NULL,
    sentiment    TEXT        NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL,
    fetched_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_news_category_published
    ON news_articles (category, published_at DESC);

CREATE TABLE IF NOT EXISTS trending_tokens (
    id              BIGSERIAL   PRIMARY KEY,
    token_id        TEXT        NOT NULL,
    symbol          TEXT        NOT NULL,
    name            TEXT        NOT NULL,
    rank            INTEGER     NOT NULL,
    market_cap_rank INTEGER     NOT NULL,
    token_group     TEXT        NOT NULL,
    price_usd       NUMERIC     NOT NULL DEFAULT 0,
    change_24h_pct  NUMERIC     NOT NULL DEFAULT 0,
    fetched_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trending_fetched
    ON trending_tokens (fetched_at DESC);
`

// FeedRepository persists news articles (deduplicated by URL) and trending
// token batches.
type FeedRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewFeedRepository(pool PgxPool, tracer trace.Tracer) *FeedRepository {
	return &FeedRepository{pool: pool, tracer: tracer}
}

func (r *FeedRepository) RunMigrations(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}
	_, span := r.tracer.Start(ctx, "feed-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createFeedTables)
	return err
}

// UpsertNews inserts articles, ignoring URLs we have already stored.
func (r *FeedRepository) UpsertNews(ctx context.Context, articles []*domain.NewsArticle) error {
	if r.pool == nil {
		return nil
	}
	if len(articles) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "feed-repo.upsert-news")
	defer span.End()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, a := range articles {
		batch.Queue(
			`INSERT INTO news_articles (url, title, description, image_url, source, category, sentiment, published_at, fetched_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (url) DO NOTHING`,
			a.URL, a.Title, a.Description, a.ImageURL, a.Source, a.Category, a.Sentiment, a.PublishedAt, now,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range articles {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *FeedRepository) LatestNews(ctx context.Context, category string, limit int) ([]*domain.NewsArticle, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "feed-repo.latest-news")
	defer span.End()

	query := `SELECT url, title, description, image_url, source, category, sentiment, published_at
	          FROM news_articles`
	args := []any{}
	if category != "" && category != "all" {
		query += ` WHERE category = $1 ORDER BY published_at DESC LIMIT $2`
		args = append(args, category, limit)
	} else {
		query += ` ORDER BY published_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*domain.NewsArticle
	for rows.Next() {
		a := &domain.NewsArticle{}
		if err := rows.Scan(&a.URL, &a.Title, &a.Description, &a.ImageURL, &a.Source, &a.Category, &a.Sentiment, &a.PublishedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// InsertTrendingBatch appends one full trending refresh.
func (r *FeedRepository) InsertTrendingBatch(ctx context.Context, tokens []*domain.TrendingToken) error {
	if r.pool == nil {
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "feed-repo.insert-trending")
	defer span.End()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, t := range tokens {
		batch.Queue(
			`INSERT INTO trending_tokens (token_id, symbol, name, rank, market_cap_rank, token_group, price_usd, change_24h_pct, fetched_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.TokenID, t.Symbol, t.Name, t.Rank, t.MarketCapRank, string(t.Group), t.PriceUSD, t.Change24hPct, now,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range tokens {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LatestTrending returns the most recent trending batch.
func (r *FeedRepository) LatestTrending(ctx context.Context) ([]*domain.TrendingToken, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "feed-repo.latest-trending")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT token_id, symbol, name, rank, market_cap_rank, token_group, price_usd, change_24h_pct
		 FROM trending_tokens
		 WHERE fetched_at = (SELECT MAX(fetched_at) FROM trending_tokens)
		 ORDER BY token_group, rank`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*domain.TrendingToken
	for rows.Next() {
		t := &domain.TrendingToken{}
		var group string
		if err := rows.Scan(&t.TokenID, &t.Symbol, &t.Name, &t.Rank, &t.MarketCapRank, &group, &t.PriceUSD, &t.Change24hPct); err != nil {
			return nil, err
		}
		t.Group = domain.TokenGroup(group)
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
