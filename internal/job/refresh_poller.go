package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// RefreshPoller runs background goroutines that periodically fetch and
// persist every aggregated data kind on its own cadence. It is the only
// producer of persisted freshness; the read path never writes snapshots.
type RefreshPoller struct {
	tracer trace.Tracer
	market MarketRefresher
	news   NewsRefresher

	gasInterval    time.Duration
	spotInterval   time.Duration
	globalInterval time.Duration
}

type MarketRefresher interface {
	RefreshGas(ctx context.Context) error
	RefreshSpotPrices(ctx context.Context) error
	RefreshGlobal(ctx context.Context) error
	RefreshSentiment(ctx context.Context) error
	RefreshTrending(ctx context.Context) error
	RefreshDerivatives(ctx context.Context) error
}

type NewsRefresher interface {
	RefreshNews(ctx context.Context) error
}

func NewRefreshPoller(
	tracer trace.Tracer,
	market MarketRefresher,
	news NewsRefresher,
	gasIntervalSecs, spotIntervalSecs, globalIntervalSecs int,
) *RefreshPoller {
	return &RefreshPoller{
		tracer:         tracer,
		market:         market,
		news:           news,
		gasInterval:    time.Duration(gasIntervalSecs) * time.Second,
		spotInterval:   time.Duration(spotIntervalSecs) * time.Second,
		globalInterval: time.Duration(globalIntervalSecs) * time.Second,
	}
}

// Start launches one polling goroutine per data kind, staggered so the
// initial burst does not hit every upstream at once. Blocks until ctx is
// cancelled.
func (p *RefreshPoller) Start(ctx context.Context) {
	log.Println("Refresh poller starting...")

	go p.pollLoop(ctx, "gas", 0, p.gasInterval, p.market.RefreshGas)
	go p.pollLoop(ctx, "spot-prices", 5*time.Second, p.spotInterval, p.market.RefreshSpotPrices)
	go p.pollLoop(ctx, "global", 10*time.Second, p.globalInterval, p.market.RefreshGlobal)
	go p.pollLoop(ctx, "sentiment", 15*time.Second, time.Hour, p.market.RefreshSentiment)
	go p.pollLoop(ctx, "trending", 20*time.Second, time.Hour, p.market.RefreshTrending)
	go p.pollLoop(ctx, "derivatives", 25*time.Second, p.globalInterval, p.market.RefreshDerivatives)
	if p.news != nil {
		go p.pollLoop(ctx, "news", 30*time.Second, 30*time.Minute, p.news.RefreshNews)
	}

	<-ctx.Done()
	log.Println("Refresh poller stopped")
}

func (p *RefreshPoller) pollLoop(ctx context.Context, name string, delay, interval time.Duration, fn func(context.Context) error) {
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}
