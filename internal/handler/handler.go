package handler

import (
	"context"

	"gaspulse/internal/domain"
	"gaspulse/internal/service"
	"gaspulse/internal/stress"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketReader is the dashboard read surface the handlers consume.
type MarketReader interface {
	Gas(ctx context.Context, blockchain string) (*domain.GasQuoteUSD, error)
	Prices(ctx context.Context, symbols []string) (map[string]*domain.SpotPrice, error)
	Global(ctx context.Context) (*domain.GlobalMarketSnapshot, error)
	MarketCapChart(ctx context.Context, days int) ([]*domain.MarketCapPoint, error)
	FearGreed(ctx context.Context) (*domain.SentimentIndex, error)
	Altseason(ctx context.Context) (*domain.AltseasonIndex, error)
	Stress(ctx context.Context) (*stress.Index, error)
	Trending(ctx context.Context) (*service.TrendingGroups, error)
	RefreshAll(ctx context.Context) error
}

type NewsReader interface {
	News(ctx context.Context, category string, limit int) ([]*domain.NewsArticle, error)
}

type Handler struct {
	tracer       trace.Tracer
	market       MarketReader
	news         NewsReader
	refreshToken string
}

func New(tracer trace.Tracer, market MarketReader, news NewsReader, refreshToken string) *Handler {
	return &Handler{
		tracer:       tracer,
		market:       market,
		news:         news,
		refreshToken: refreshToken,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/gas/:blockchain", h.GetGas)
	r.GET("/api/prices", h.GetPrices)
	r.GET("/api/market", h.GetMarket)
	r.GET("/api/market/chart", h.GetMarketChart)
	r.GET("/api/feargreed", h.GetFearGreed)
	r.GET("/api/altseason", h.GetAltseason)
	r.GET("/api/stress", h.GetStress)
	r.GET("/api/news", h.GetNews)
	r.GET("/api/trending", h.GetTrending)
	r.POST("/api/refresh", BearerAuth(h.refreshToken), h.PostRefresh)
}
