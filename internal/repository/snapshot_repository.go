package repository

import (
	"context"
	"time"

	"gaspulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

// Snapshot tables are append-only time series. "Current value" is always
// the most recent row per kind and partition key; rows are never updated.
const createSnapshotTables = `
CREATE TABLE IF NOT EXISTS gas_quotes (
    id          BIGSERIAL   PRIMARY KEY,
    blockchain  TEXT        NOT NULL,
    slow        NUMERIC     NOT NULL,
    standard    NUMERIC     NOT NULL,
    fast        NUMERIC     NOT NULL,
    unit        TEXT        NOT NULL,
    source      TEXT        NOT NULL,
    observed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gas_quotes_chain_time
    ON gas_quotes (blockchain, observed_at DESC);

CREATE TABLE IF NOT EXISTS spot_prices (
    id             BIGSERIAL   PRIMARY KEY,
    symbol         TEXT        NOT NULL,
    price_usd      NUMERIC     NOT NULL,
    change_24h_pct NUMERIC     NOT NULL,
    observed_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spot_prices_symbol_time
    ON spot_prices (symbol, observed_at DESC);

CREATE TABLE IF NOT EXISTS market_snapshots (
    id                   BIGSERIAL   PRIMARY KEY,
    total_market_cap_usd NUMERIC     NOT NULL,
    total_volume_usd     NUMERIC     NOT NULL,
    btc_dominance_pct    NUMERIC     NOT NULL,
    eth_dominance_pct    NUMERIC     NOT NULL,
    observed_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_market_snapshots_time
    ON market_snapshots (observed_at DESC);

CREATE TABLE IF NOT EXISTS sentiment_points (
    id             BIGSERIAL   PRIMARY KEY,
    value          INTEGER     NOT NULL,
    classification TEXT        NOT NULL,
    observed_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sentiment_points_time
    ON sentiment_points (observed_at DESC);

CREATE TABLE IF NOT EXISTS altseason_points (
    id                BIGSERIAL   PRIMARY KEY,
    value             NUMERIC     NOT NULL,
    btc_dominance_pct NUMERIC     NOT NULL,
    classification    TEXT        NOT NULL,
    observed_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_altseason_points_time
    ON altseason_points (observed_at DESC);

CREATE TABLE IF NOT EXISTS derivatives_snapshots (
    id                          BIGSERIAL   PRIMARY KEY,
    symbol                      TEXT        NOT NULL,
    funding_rate_pct            NUMERIC     NOT NULL,
    open_interest_usd           NUMERIC     NOT NULL,
    open_interest_delta_24h_pct NUMERIC     NOT NULL,
    liquidations_usd_24h        NUMERIC     NOT NULL,
    volatility_24h_pct          NUMERIC     NOT NULL,
    stablecoin_dominance_pct    NUMERIC     NOT NULL,
    source                      TEXT        NOT NULL,
    observed_at                 TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_derivatives_symbol_time
    ON derivatives_snapshots (symbol, observed_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SnapshotRepository persists and reads the market-data time series.
// A nil pool disables persistence: writes no-op, reads report no rows.
type SnapshotRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSnapshotRepository(pool PgxPool, tracer trace.Tracer) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, tracer: tracer}
}

func (r *SnapshotRepository) RunMigrations(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createSnapshotTables)
	return err
}

func (r *SnapshotRepository) InsertGasQuote(ctx context.Context, q *domain.GasQuote) error {
	if r.pool == nil {
		return nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert-gas-quote")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO gas_quotes (blockchain, slow, standard, fast, unit, source, observed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		q.Blockchain, q.Slow, q.Standard, q.Fast, string(q.Unit), q.Source, q.ObservedAt,
	)
	return err
}

func (r *SnapshotRepository) LatestGasQuote(ctx context.Context, blockchain string) (*domain.GasQuote, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest-gas-quote")
	defer span.End()

	q := &domain.GasQuote{}
	var unit string
	err := r.pool.QueryRow(ctx,
		`SELECT blockchain, slow, standard, fast, unit, source, observed_at
		 FROM gas_quotes WHERE blockchain = $1
		 ORDER BY observed_at DESC LIMIT 1`,
		blockchain,
	).Scan(&q.Blockchain, &q.Slow, &q.Standard, &q.Fast, &unit, &q.Source, &q.ObservedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.Unit = domain.GasUnit(unit)
	return q, nil
}

func (r *SnapshotRepository) InsertSpotPrices(ctx context.Context, prices []*domain.SpotPrice) error {
	if r.pool == nil {
		return nil
	}
	if len(prices) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "snapshot-repo.insert-spot-prices")
	defer span.End()

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(
			`INSERT INTO spot_prices (symbol, price_usd, change_24h_pct, observed_at)
			 VALUES ($1, $2, $3, $4)`,
			p.Symbol, p.PriceUSD, p.Change24hPct, p.ObservedAt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range prices {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *SnapshotRepository) LatestSpotPrice(ctx context.Context, symbol string) (*domain.SpotPrice, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest-spot-price")
	defer span.End()

	p := &domain.SpotPrice{}
	err := r.pool.QueryRow(ctx,
		`SELECT symbol, price_usd, change_24h_pct, observed_at
		 FROM spot_prices WHERE symbol = $1
		 ORDER BY observed_at DESC LIMIT 1`,
		symbol,
	).Scan(&p.Symbol, &p.PriceUSD, &p.Change24hPct, &p.ObservedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SnapshotRepository) InsertGlobalSnapshot(ctx context.Context, g *domain.GlobalMarketSnapshot) error {
	if r.pool == nil {
		return nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert-global")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO market_snapshots (total_market_cap_usd, total_volume_usd, btc_dominance_pct, eth_dominance_pct, observed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		g.TotalMarketCapUSD, g.TotalVolumeUSD, g.BTCDominancePct, g.ETHDominancePct, g.ObservedAt,
	)
	return err
}

func (r *SnapshotRepository) LatestGlobalSnapshot(ctx context.Context) (*domain.GlobalMarketSnapshot, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest-global")
	defer span.End()

	g := &domain.GlobalMarketSnapshot{}
	err := r.pool.QueryRow(ctx,
		`SELECT total_market_cap_usd, total_volume_usd, btc_dominance_pct, eth_dominance_pct, observed_at
		 FROM market_snapshots ORDER BY observed_at DESC LIMIT 1`,
	).Scan(&g.TotalMarketCapUSD, &g.TotalVolumeUSD, &g.BTCDominancePct, &g.ETHDominancePct, &g.ObservedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GlobalHistory returns market snapshots from the last N days, newest first.
func (r *SnapshotRepository) GlobalHistory(ctx context.Context, days, limit int) ([]*domain.MarketCapPoint, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.global-history")
	defer span.End()

	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := r.pool.Query(ctx,
		`SELECT observed_at, total_market_cap_usd, total_volume_usd
		 FROM market_snapshots WHERE observed_at >= $1
		 ORDER BY observed_at DESC LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*domain.MarketCapPoint
	for rows.Next() {
		p := &domain.MarketCapPoint{}
		if err := rows.Scan(&p.Timestamp, &p.MarketCapUSD, &p.VolumeUSD); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *SnapshotRepository) InsertSentiment(ctx context.Context, s *domain.SentimentIndex) error {
	if r.pool == nil {
		return nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert-sentiment")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO sentiment_points (value, classification, observed_at) VALUES ($1, $2, $3)`,
		s.Value, string(s.Classification), s.ObservedAt,
	)
	return err
}

func (r *SnapshotRepository) LatestSentiment(ctx context.Context) (*domain.SentimentIndex, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest-sentiment")
	defer span.End()

	s := &domain.SentimentIndex{}
	var class string
	err := r.pool.QueryRow(ctx,
		`SELECT value, classification, observed_at
		 FROM sentiment_points ORDER BY observed_at DESC LIMIT 1`,
	).Scan(&s.Value, &class, &s.ObservedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Classification = domain.SentimentClass(class)
	return s, nil
}

func (r *SnapshotRepository) InsertAltseason(ctx context.Context, a *domain.AltseasonIndex) error {
	if r.pool == nil {
		return nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert-altseason")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO altseason_points (value, btc_dominance_pct, classification, observed_at)
		 VALUES ($1, $2, $3, $4)`,
		a.Value, a.BTCDominancePct, string(a.Classification), a.ObservedAt,
	)
	return err
}

func (r *SnapshotRepository) LatestAltseason(ctx context.Context) (*domain.AltseasonIndex, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest-altseason")
	defer span.End()

	a := &domain.AltseasonIndex{}
	var class string
	err := r.pool.QueryRow(ctx,
		`SELECT value, btc_dominance_pct, classification, observed_at
		 FROM altseason_points ORDER BY observed_at DESC LIMIT 1`,
	).Scan(&a.Value, &a.BTCDominancePct, &class, &a.ObservedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Classification = domain.SeasonClass(class)
	return a, nil
}

func (r *SnapshotRepository) InsertDerivatives(ctx context.Context, d *domain.DerivativesSnapshot) error {
	if r.pool == nil {
		return nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.insert-derivatives")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO derivatives_snapshots
		 (symbol, funding_rate_pct, open_interest_usd, open_interest_delta_24h_pct,
		  liquidations_usd_24h, volatility_24h_pct, stablecoin_dominance_pct, source, observed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.Symbol, d.FundingRatePct, d.OpenInterestUSD, d.OpenInterestDelta24hPct,
		d.LiquidationsUSD24h, d.Volatility24hPct, d.StablecoinDominancePct, d.Source, d.ObservedAt,
	)
	return err
}

func (r *SnapshotRepository) LatestDerivatives(ctx context.Context, symbol string) (*domain.DerivativesSnapshot, error) {
	if r.pool == nil {
		return nil, nil
	}
	_, span := r.tracer.Start(ctx, "snapshot-repo.latest-derivatives")
	defer span.End()

	d := &domain.DerivativesSnapshot{}
	err := r.pool.QueryRow(ctx,
		`SELECT symbol, funding_rate_pct, open_interest_usd, open_interest_delta_24h_pct,
		        liquidations_usd_24h, volatility_24h_pct, stablecoin_dominance_pct, source, observed_at
		 FROM derivatives_snapshots WHERE symbol = $1
		 ORDER BY observed_at DESC LIMIT 1`,
		symbol,
	).Scan(&d.Symbol, &d.FundingRatePct, &d.OpenInterestUSD, &d.OpenInterestDelta24hPct,
		&d.LiquidationsUSD24h, &d.Volatility24hPct, &d.StablecoinDominancePct, &d.Source, &d.ObservedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
