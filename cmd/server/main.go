package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gaspulse/internal/bot"
	"gaspulse/internal/cache"
	"gaspulse/internal/config"
	"gaspulse/internal/db"
	"gaspulse/internal/domain"
	"gaspulse/internal/fetcher"
	"gaspulse/internal/handler"
	"gaspulse/internal/job"
	"gaspulse/internal/provider"
	"gaspulse/internal/repository"
	"gaspulse/internal/service"
	"gaspulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "gaspulse/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	startPollerFunc        = func(p *job.RefreshPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           GasPulse API
// @version         1.0
// @description     Aggregated crypto market data: gas fees, prices, sentiment, and news.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis; both are optional at runtime.
	var pool repository.PgxPool
	if p := initPostgresFunc(ctx, cfg.DatabaseURL); p != nil {
		pool = p
	}
	redisClient := initRedisFunc(ctx, cfg.RedisURL)
	var ttlCache *cache.TTLCache
	if redisClient != nil {
		ttlCache = cache.NewTTLCache(redisClient)
	}

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	snapshotRepo := repository.NewSnapshotRepository(pool, tracer)
	feedRepo := repository.NewFeedRepository(pool, tracer)
	if err := snapshotRepo.RunMigrations(ctx); err != nil {
		log.Fatalf("failed to run snapshot migrations: %v", err)
	}
	if err := feedRepo.RunMigrations(ctx); err != nil {
		log.Fatalf("failed to run feed migrations: %v", err)
	}

	// Wire providers into per-kind failover chains
	coingecko := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoAPIKey)
	coinpaprika := provider.NewCoinPaprikaProvider(tracer)
	sources := buildSources(tracer, cfg, coingecko, coinpaprika)

	marketService := service.NewMarketService(tracer, snapshotRepo, feedRepo, ttlCache, sources)

	newsProviders := []service.NewsProvider{}
	if cfg.CryptoPanicAPIKey != "" {
		newsProviders = append(newsProviders, provider.NewCryptoPanicProvider(tracer, cfg.CryptoPanicAPIKey))
	}
	newsProviders = append(newsProviders, provider.NewRSSNewsProvider(tracer))
	scorer := service.NewOpenAIScorer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	var articleScorer service.ArticleScorer
	if scorer != nil {
		articleScorer = scorer
	}
	newsService := service.NewNewsService(tracer, feedRepo, ttlCache, newsProviders, articleScorer)

	// Start refresh poller (background goroutines, stopped by ctx cancel)
	poller := job.NewRefreshPoller(tracer, marketService, newsService, cfg.GasPollSecs, cfg.SpotPollSecs, cfg.GlobalPollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, marketService)

	// Create handlers and routes
	h := handler.New(tracer, marketService, newsService, cfg.RefreshToken)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func buildSources(
	tracer trace.Tracer,
	cfg *config.Config,
	coingecko *provider.CoinGeckoProvider,
	coinpaprika *provider.CoinPaprikaProvider,
) service.Sources {
	etherscan := provider.NewEtherscanGasProvider(tracer, cfg.EtherscanAPIKey)
	blocknative := provider.NewBlocknativeGasProvider(tracer, cfg.BlocknativeAPIKey)
	mempool := provider.NewMempoolGasProvider(tracer, cfg.MempoolBaseURL)
	toncenter := provider.NewTonCenterGasProvider(tracer)
	solana := provider.NewSolanaGasProvider(tracer, cfg.SolanaRPCURL)
	feargreed := provider.NewFearGreedProvider(tracer)
	binance := provider.NewBinanceDerivativesProvider(tracer)
	okx := provider.NewOKXDerivativesProvider(tracer)

	gasSource := func(name string, fetch func(ctx context.Context) (*domain.GasQuote, error)) fetcher.Source[domain.GasQuote] {
		return fetcher.Source[domain.GasQuote]{Name: name, Fetch: fetch}
	}

	return service.Sources{
		Gas: map[string][]fetcher.Source[domain.GasQuote]{
			"ethereum": {
				gasSource(etherscan.Name(), etherscan.FetchGas),
				gasSource(blocknative.Name(), blocknative.FetchGas),
			},
			"bitcoin": {
				gasSource(mempool.Name(), mempool.FetchGas),
			},
			"ton": {
				gasSource(toncenter.Name(), toncenter.FetchGas),
			},
			"solana": {
				gasSource(solana.Name(), solana.FetchGas),
			},
		},
		Spot: []fetcher.Source[map[string]*domain.SpotPrice]{
			{
				Name: coingecko.Name(),
				Fetch: func(ctx context.Context) (*map[string]*domain.SpotPrice, error) {
					m, err := coingecko.FetchSpotPrices(ctx, domain.SupportedSymbols)
					if err != nil {
						return nil, err
					}
					return &m, nil
				},
			},
			{
				Name: coinpaprika.Name(),
				Fetch: func(ctx context.Context) (*map[string]*domain.SpotPrice, error) {
					m, err := coinpaprika.FetchSpotPrices(ctx, domain.SupportedSymbols)
					if err != nil {
						return nil, err
					}
					return &m, nil
				},
			},
		},
		Global: []fetcher.Source[domain.GlobalMarketSnapshot]{
			{Name: coingecko.Name(), Fetch: coingecko.FetchGlobal},
			{Name: coinpaprika.Name(), Fetch: coinpaprika.FetchGlobal},
		},
		Sentiment: []fetcher.Source[domain.SentimentIndex]{
			{Name: feargreed.Name(), Fetch: feargreed.FetchSentiment},
		},
		Trending: []fetcher.Source[[]*domain.TrendingToken]{
			{
				Name: coingecko.Name(),
				Fetch: func(ctx context.Context) (*[]*domain.TrendingToken, error) {
					t, err := coingecko.FetchTrending(ctx)
					if err != nil {
						return nil, err
					}
					return &t, nil
				},
			},
		},
		Derivatives: []fetcher.Source[domain.DerivativesSnapshot]{
			{
				Name: binance.Name(),
				Fetch: func(ctx context.Context) (*domain.DerivativesSnapshot, error) {
					return binance.FetchDerivatives(ctx, "BTC")
				},
			},
			{
				Name: okx.Name(),
				Fetch: func(ctx context.Context) (*domain.DerivativesSnapshot, error) {
					return okx.FetchDerivatives(ctx, "BTC")
				},
			},
		},
		StablecoinShare: coingecko.StablecoinDominancePct,
	}
}
