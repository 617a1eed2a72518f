package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetNews godoc
// @Summary      Get crypto news
// @Description  Returns recent articles for a category, deduplicated by URL and labeled with sentiment
// @Tags         news
// @Produce      json
// @Param        category  query  string  false  "Feed category (all, bitcoin, ethereum, altcoin, defi)"  default(all)
// @Param        limit     query  int     false  "Number of articles (default 30, max 100)"  default(30)
// @Success      200  {object}  map[string]interface{}
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	category := strings.ToLower(c.DefaultQuery("category", "all"))
	span.SetAttributes(attribute.String("category", category))

	limit := 0
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	articles, err := h.news.News(ctx, category, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category, "articles": articles})
}
