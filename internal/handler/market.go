package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPrices godoc
// @Summary      Get current spot prices
// @Description  Returns USD prices and 24h change for the requested symbols, or all tracked symbols when coins is omitted
// @Tags         market
// @Produce      json
// @Param        coins  query  string  false  "Comma-separated symbols (e.g., BTC,ETH,SOL)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/prices [get]
func (h *Handler) GetPrices(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-prices")
	defer span.End()

	var symbols []string
	if coins := c.Query("coins"); coins != "" {
		for _, s := range strings.Split(coins, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	span.SetAttributes(attribute.Int("symbols.requested", len(symbols)))

	prices, err := h.market.Prices(ctx, symbols)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prices": prices})
}

// GetMarket godoc
// @Summary      Get global market snapshot
// @Description  Returns total market cap, volume, and BTC/ETH dominance
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.GlobalMarketSnapshot
// @Router       /api/market [get]
func (h *Handler) GetMarket(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market")
	defer span.End()

	snapshot, err := h.market.Global(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetMarketChart godoc
// @Summary      Get market-cap history
// @Description  Returns persisted market cap and volume samples for the chart window
// @Tags         market
// @Produce      json
// @Param        days  query  int  false  "Window in days (default 7, max 365)"  default(7)
// @Success      200  {object}  map[string]interface{}
// @Router       /api/market/chart [get]
func (h *Handler) GetMarketChart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-chart")
	defer span.End()

	days := 7
	if d := c.Query("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			days = n
		}
	}
	span.SetAttributes(attribute.Int("days", days))

	points, err := h.market.MarketCapChart(ctx, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days, "points": points})
}

// GetFearGreed godoc
// @Summary      Get the Fear & Greed index
// @Description  Returns the current sentiment value and its five-bucket classification
// @Tags         sentiment
// @Produce      json
// @Success      200  {object}  domain.SentimentIndex
// @Router       /api/feargreed [get]
func (h *Handler) GetFearGreed(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-fear-greed")
	defer span.End()

	idx, err := h.market.FearGreed(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, idx)
}

// GetAltseason godoc
// @Summary      Get the altseason index
// @Description  Returns the dominance-derived altseason value and season classification
// @Tags         sentiment
// @Produce      json
// @Success      200  {object}  domain.AltseasonIndex
// @Router       /api/altseason [get]
func (h *Handler) GetAltseason(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-altseason")
	defer span.End()

	idx, err := h.market.Altseason(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, idx)
}

// GetStress godoc
// @Summary      Get the market stress index
// @Description  Returns the weighted derivatives stress score with per-component breakdown
// @Tags         sentiment
// @Produce      json
// @Success      200  {object}  stress.Index
// @Router       /api/stress [get]
func (h *Handler) GetStress(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-stress")
	defer span.End()

	idx, err := h.market.Stress(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, idx)
}

// GetTrending godoc
// @Summary      Get trending tokens
// @Description  Returns trending searches, top gainers, and top-5 by market cap
// @Tags         market
// @Produce      json
// @Success      200  {object}  service.TrendingGroups
// @Router       /api/trending [get]
func (h *Handler) GetTrending(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trending")
	defer span.End()

	groups, err := h.market.Trending(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, groups)
}
