package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gaspulse/internal/cache"
	"gaspulse/internal/domain"
	"gaspulse/internal/fallback"
	"gaspulse/internal/fetcher"
	"gaspulse/internal/stress"

	"go.opentelemetry.io/otel/trace"
)

// stressSymbol is the underlying whose perp derivatives feed the stress
// index. Providers append their own quote suffix (BTCUSDT, BTC-USDT-SWAP).
const stressSymbol = "BTC"

// SnapshotStore is the persisted-snapshot surface the service consumes.
// nil-result/nil-error means no row yet.
type SnapshotStore interface {
	InsertGasQuote(ctx context.Context, q *domain.GasQuote) error
	LatestGasQuote(ctx context.Context, blockchain string) (*domain.GasQuote, error)
	InsertSpotPrices(ctx context.Context, prices []*domain.SpotPrice) error
	LatestSpotPrice(ctx context.Context, symbol string) (*domain.SpotPrice, error)
	InsertGlobalSnapshot(ctx context.Context, g *domain.GlobalMarketSnapshot) error
	LatestGlobalSnapshot(ctx context.Context) (*domain.GlobalMarketSnapshot, error)
	GlobalHistory(ctx context.Context, days, limit int) ([]*domain.MarketCapPoint, error)
	InsertSentiment(ctx context.Context, s *domain.SentimentIndex) error
	LatestSentiment(ctx context.Context) (*domain.SentimentIndex, error)
	InsertAltseason(ctx context.Context, a *domain.AltseasonIndex) error
	LatestAltseason(ctx context.Context) (*domain.AltseasonIndex, error)
	InsertDerivatives(ctx context.Context, d *domain.DerivativesSnapshot) error
	LatestDerivatives(ctx context.Context, symbol string) (*domain.DerivativesSnapshot, error)
}

type TrendingStore interface {
	InsertTrendingBatch(ctx context.Context, tokens []*domain.TrendingToken) error
	LatestTrending(ctx context.Context) ([]*domain.TrendingToken, error)
}

// Sources groups the ordered failover chains per data kind. The slices are
// tried in order; first success wins.
type Sources struct {
	Gas         map[string][]fetcher.Source[domain.GasQuote]
	Spot        []fetcher.Source[map[string]*domain.SpotPrice]
	Global      []fetcher.Source[domain.GlobalMarketSnapshot]
	Sentiment   []fetcher.Source[domain.SentimentIndex]
	Trending    []fetcher.Source[[]*domain.TrendingToken]
	Derivatives []fetcher.Source[domain.DerivativesSnapshot]

	// StablecoinShare enriches derivatives snapshots; optional.
	StablecoinShare func(ctx context.Context, totalMarketCapUSD float64) (float64, error)
}

// TrendingGroups is the grouped dashboard payload.
type TrendingGroups struct {
	Trending []*domain.TrendingToken `json:"trending"`
	Gainers  []*domain.TrendingToken `json:"gainers"`
	Top5     []*domain.TrendingToken `json:"top5"`
}

// MarketService answers every dashboard read. Reads consult the latest
// persisted row first, then the TTL cache backed by the failover chain, and
// finally the static fallback, so they never propagate upstream errors.
type MarketService struct {
	tracer   trace.Tracer
	store    SnapshotStore
	trending TrendingStore
	cache    *cache.TTLCache
	sources  Sources
}

func NewMarketService(
	tracer trace.Tracer,
	store SnapshotStore,
	trending TrendingStore,
	ttlCache *cache.TTLCache,
	sources Sources,
) *MarketService {
	return &MarketService{
		tracer:   tracer,
		store:    store,
		trending: trending,
		cache:    ttlCache,
		sources:  sources,
	}
}

// fresh reports whether a persisted observation is still inside the cache
// TTL for its kind. Persisted rows older than that fall through to live
// fetching.
func fresh(observedAt time.Time, kind domain.Kind) bool {
	return !observedAt.IsZero() && time.Since(observedAt) < cache.TTL(kind)
}

// Gas returns the current fee tiers for one blockchain, with USD tier
// values when a native spot price is available. The only error is an
// unsupported blockchain.
func (s *MarketService) Gas(ctx context.Context, blockchain string) (*domain.GasQuoteUSD, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.gas")
	defer span.End()

	symbol, ok := domain.NativeSymbol[blockchain]
	if !ok {
		return nil, fmt.Errorf("unsupported blockchain: %s", blockchain)
	}

	q := s.gasQuote(ctx, blockchain)
	if !q.TierOrderOK() {
		log.Printf("gas %s: tiers out of order from %s: slow=%v standard=%v fast=%v",
			blockchain, q.Source, q.Slow, q.Standard, q.Fast)
	}

	usd := domain.QuoteUSD(*q, s.spotUSD(ctx, symbol))
	return &usd, nil
}

func (s *MarketService) gasQuote(ctx context.Context, blockchain string) *domain.GasQuote {
	if stored, err := s.store.LatestGasQuote(ctx, blockchain); err != nil {
		log.Printf("gas %s: store read error: %v", blockchain, err)
	} else if stored != nil && fresh(stored.ObservedAt, domain.KindGasPrice) {
		return stored
	}

	q, err := cache.GetOrFetch(ctx, s.cache, domain.KindGasPrice, blockchain,
		func(ctx context.Context) (*domain.GasQuote, error) {
			q, _, err := fetcher.First(ctx, "gas_price/"+blockchain, 0, s.sources.Gas[blockchain])
			return q, err
		})
	if err != nil {
		fb := fallback.GasQuote(blockchain)
		return &fb
	}
	return q
}

// Prices returns a spot price for every requested symbol. Unknown symbols
// are dropped; symbols no provider could price come back as zero-valued
// fallback rows, so the result always covers the valid request.
func (s *MarketService) Prices(ctx context.Context, symbols []string) (map[string]*domain.SpotPrice, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.prices")
	defer span.End()

	if len(symbols) == 0 {
		symbols = domain.SupportedSymbols
	}

	out := make(map[string]*domain.SpotPrice)
	var missing []string
	for _, symbol := range symbols {
		if _, ok := domain.CoinGeckoID[symbol]; !ok {
			log.Printf("prices: skipping unknown symbol %s", symbol)
			continue
		}
		if stored, err := s.store.LatestSpotPrice(ctx, symbol); err != nil {
			log.Printf("prices: store read error for %s: %v", symbol, err)
			missing = append(missing, symbol)
		} else if stored != nil && fresh(stored.ObservedAt, domain.KindSpotPrice) {
			out[symbol] = stored
		} else {
			missing = append(missing, symbol)
		}
	}

	if len(missing) == 0 {
		return out, nil
	}

	// One batched fetch covers all supported symbols, so cache under a
	// single key rather than per symbol.
	fetched, err := cache.GetOrFetch(ctx, s.cache, domain.KindSpotPrice, "all",
		func(ctx context.Context) (*map[string]*domain.SpotPrice, error) {
			m, _, err := fetcher.First(ctx, "spot_price", 0, s.sources.Spot)
			return m, err
		})
	if err != nil {
		for symbol, row := range fallback.SpotPrices(missing) {
			out[symbol] = row
		}
		return out, nil
	}

	for _, symbol := range missing {
		if row, ok := (*fetched)[symbol]; ok {
			out[symbol] = row
			continue
		}
		for fbSymbol, row := range fallback.SpotPrices([]string{symbol}) {
			out[fbSymbol] = row
		}
	}
	return out, nil
}

// Global returns market-wide aggregates. Never errors.
func (s *MarketService) Global(ctx context.Context) (*domain.GlobalMarketSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.global")
	defer span.End()

	if stored, err := s.store.LatestGlobalSnapshot(ctx); err != nil {
		log.Printf("global: store read error: %v", err)
	} else if stored != nil && fresh(stored.ObservedAt, domain.KindMarketGlobal) {
		return stored, nil
	}

	g, err := cache.GetOrFetch(ctx, s.cache, domain.KindMarketGlobal, "",
		func(ctx context.Context) (*domain.GlobalMarketSnapshot, error) {
			g, _, err := fetcher.First(ctx, "market_global", 0, s.sources.Global)
			return g, err
		})
	if err != nil {
		fb := fallback.Global()
		return &fb, nil
	}
	return g, nil
}

// MarketCapChart returns persisted market-cap history for the requested
// window. An empty store yields an empty chart, not an error.
func (s *MarketService) MarketCapChart(ctx context.Context, days int) ([]*domain.MarketCapPoint, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.market-cap-chart")
	defer span.End()

	if days < 1 {
		days = 7
	}
	if days > 365 {
		days = 365
	}

	// Global snapshots land every five minutes, 288 per day.
	limit := days * 288
	if limit > 2016 {
		limit = 2016
	}

	points, err := s.store.GlobalHistory(ctx, days, limit)
	if err != nil {
		log.Printf("market chart: store read error: %v", err)
		return []*domain.MarketCapPoint{}, nil
	}
	if points == nil {
		points = []*domain.MarketCapPoint{}
	}
	return points, nil
}

// FearGreed returns the current sentiment index. Never errors.
func (s *MarketService) FearGreed(ctx context.Context) (*domain.SentimentIndex, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.fear-greed")
	defer span.End()

	if stored, err := s.store.LatestSentiment(ctx); err != nil {
		log.Printf("feargreed: store read error: %v", err)
	} else if stored != nil && fresh(stored.ObservedAt, domain.KindSentimentIndex) {
		return stored, nil
	}

	idx, err := cache.GetOrFetch(ctx, s.cache, domain.KindSentimentIndex, "",
		func(ctx context.Context) (*domain.SentimentIndex, error) {
			idx, _, err := fetcher.First(ctx, "sentiment_index", 0, s.sources.Sentiment)
			return idx, err
		})
	if err != nil {
		fb := fallback.Sentiment()
		return &fb, nil
	}
	return idx, nil
}

// Altseason returns the altseason index, deriving it from the current BTC
// dominance when no fresh persisted value exists. Never errors.
func (s *MarketService) Altseason(ctx context.Context) (*domain.AltseasonIndex, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.altseason")
	defer span.End()

	if stored, err := s.store.LatestAltseason(ctx); err != nil {
		log.Printf("altseason: store read error: %v", err)
	} else if stored != nil && fresh(stored.ObservedAt, domain.KindAltseasonIndex) {
		return stored, nil
	}

	g, _ := s.Global(ctx)
	idx := domain.AltseasonFromDominance(g.BTCDominancePct, g.ObservedAt)
	return &idx, nil
}

// Stress computes the market stress index from the latest derivatives
// snapshot and BTC dominance. Never errors.
func (s *MarketService) Stress(ctx context.Context) (*stress.Index, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.stress")
	defer span.End()

	d := s.derivatives(ctx)
	g, _ := s.Global(ctx)

	idx := stress.Compute(stress.FromSnapshot(d, g.BTCDominancePct), time.Now().UTC())
	return &idx, nil
}

func (s *MarketService) derivatives(ctx context.Context) *domain.DerivativesSnapshot {
	if stored, err := s.store.LatestDerivatives(ctx, stressSymbol); err != nil {
		log.Printf("derivatives: store read error: %v", err)
	} else if stored != nil && fresh(stored.ObservedAt, domain.KindDerivatives) {
		return stored
	}

	d, err := cache.GetOrFetch(ctx, s.cache, domain.KindDerivatives, stressSymbol,
		func(ctx context.Context) (*domain.DerivativesSnapshot, error) {
			d, _, err := fetcher.First(ctx, "derivatives", 0, s.sources.Derivatives)
			return d, err
		})
	if err != nil {
		fb := fallback.Derivatives(stressSymbol)
		return &fb
	}
	return d
}

// Trending returns the latest trending/gainer/top5 groups. Never errors.
func (s *MarketService) Trending(ctx context.Context) (*TrendingGroups, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.trending")
	defer span.End()

	if stored, err := s.trending.LatestTrending(ctx); err != nil {
		log.Printf("trending: store read error: %v", err)
	} else if len(stored) > 0 {
		return groupTokens(stored), nil
	}

	tokens, err := cache.GetOrFetch(ctx, s.cache, domain.KindTrendingTokens, "",
		func(ctx context.Context) (*[]*domain.TrendingToken, error) {
			t, _, err := fetcher.First(ctx, "trending_tokens", 0, s.sources.Trending)
			return t, err
		})
	if err != nil {
		return groupTokens(fallback.Trending()), nil
	}
	return groupTokens(*tokens), nil
}

func groupTokens(tokens []*domain.TrendingToken) *TrendingGroups {
	groups := &TrendingGroups{
		Trending: []*domain.TrendingToken{},
		Gainers:  []*domain.TrendingToken{},
		Top5:     []*domain.TrendingToken{},
	}
	for _, t := range tokens {
		switch t.Group {
		case domain.GroupGainer:
			groups.Gainers = append(groups.Gainers, t)
		case domain.GroupTop5:
			groups.Top5 = append(groups.Top5, t)
		default:
			groups.Trending = append(groups.Trending, t)
		}
	}
	return groups
}

// spotUSD is a best-effort native spot lookup for gas fiat conversion.
// Returns 0 when no price is available; USD tiers then render as 0.
func (s *MarketService) spotUSD(ctx context.Context, symbol string) float64 {
	prices, err := s.Prices(ctx, []string{symbol})
	if err != nil {
		return 0
	}
	if p, ok := prices[symbol]; ok {
		return p.PriceUSD
	}
	return 0
}

// RefreshGas fetches and persists a quote for every supported blockchain.
// One chain failing does not stop the others.
func (s *MarketService) RefreshGas(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-gas")
	defer span.End()

	var errs []error
	for _, blockchain := range domain.SupportedBlockchains {
		q, source, err := fetcher.First(ctx, "gas_price/"+blockchain, 0, s.sources.Gas[blockchain])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.store.InsertGasQuote(ctx, q); err != nil {
			errs = append(errs, fmt.Errorf("persist gas %s: %w", blockchain, err))
			continue
		}
		log.Printf("refreshed gas for %s via %s", blockchain, source)
	}
	return errors.Join(errs...)
}

// RefreshSpotPrices fetches and persists prices for all supported symbols.
func (s *MarketService) RefreshSpotPrices(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-spot-prices")
	defer span.End()

	prices, source, err := fetcher.First(ctx, "spot_price", 0, s.sources.Spot)
	if err != nil {
		return err
	}

	rows := make([]*domain.SpotPrice, 0, len(*prices))
	for _, row := range *prices {
		rows = append(rows, row)
	}
	if err := s.store.InsertSpotPrices(ctx, rows); err != nil {
		return fmt.Errorf("persist spot prices: %w", err)
	}
	log.Printf("refreshed %d spot prices via %s", len(rows), source)
	return nil
}

// RefreshGlobal fetches and persists the global snapshot, and derives the
// altseason index from it in the same pass.
func (s *MarketService) RefreshGlobal(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-global")
	defer span.End()

	g, source, err := fetcher.First(ctx, "market_global", 0, s.sources.Global)
	if err != nil {
		return err
	}
	if err := s.store.InsertGlobalSnapshot(ctx, g); err != nil {
		return fmt.Errorf("persist global snapshot: %w", err)
	}

	alt := domain.AltseasonFromDominance(g.BTCDominancePct, g.ObservedAt)
	if err := s.store.InsertAltseason(ctx, &alt); err != nil {
		return fmt.Errorf("persist altseason: %w", err)
	}
	log.Printf("refreshed global snapshot via %s (btc dominance %.1f%%)", source, g.BTCDominancePct)
	return nil
}

// RefreshSentiment fetches and persists the fear & greed index.
func (s *MarketService) RefreshSentiment(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-sentiment")
	defer span.End()

	idx, source, err := fetcher.First(ctx, "sentiment_index", 0, s.sources.Sentiment)
	if err != nil {
		return err
	}
	if err := s.store.InsertSentiment(ctx, idx); err != nil {
		return fmt.Errorf("persist sentiment: %w", err)
	}
	log.Printf("refreshed sentiment via %s (value %d)", source, idx.Value)
	return nil
}

// RefreshTrending fetches and persists a trending batch.
func (s *MarketService) RefreshTrending(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-trending")
	defer span.End()

	tokens, source, err := fetcher.First(ctx, "trending_tokens", 0, s.sources.Trending)
	if err != nil {
		return err
	}
	if err := s.trending.InsertTrendingBatch(ctx, *tokens); err != nil {
		return fmt.Errorf("persist trending: %w", err)
	}
	log.Printf("refreshed %d trending tokens via %s", len(*tokens), source)
	return nil
}

// RefreshDerivatives fetches and persists the derivatives snapshot,
// enriched with stablecoin dominance when the share source is configured.
func (s *MarketService) RefreshDerivatives(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-derivatives")
	defer span.End()

	d, source, err := fetcher.First(ctx, "derivatives", 0, s.sources.Derivatives)
	if err != nil {
		return err
	}

	if s.sources.StablecoinShare != nil {
		if g, err := s.store.LatestGlobalSnapshot(ctx); err == nil && g != nil {
			share, err := s.sources.StablecoinShare(ctx, g.TotalMarketCapUSD)
			if err != nil {
				log.Printf("derivatives: stablecoin share unavailable: %v", err)
			} else {
				d.StablecoinDominancePct = share
			}
		}
	}

	if err := s.store.InsertDerivatives(ctx, d); err != nil {
		return fmt.Errorf("persist derivatives: %w", err)
	}
	log.Printf("refreshed derivatives for %s via %s", d.Symbol, source)
	return nil
}

// RefreshAll runs every refresh pass once. Used by the manual refresh
// endpoint; the poller drives the individual passes on their own cadences.
func (s *MarketService) RefreshAll(ctx context.Context) error {
	return errors.Join(
		s.RefreshGas(ctx),
		s.RefreshSpotPrices(ctx),
		s.RefreshGlobal(ctx),
		s.RefreshSentiment(ctx),
		s.RefreshTrending(ctx),
		s.RefreshDerivatives(ctx),
	)
}
