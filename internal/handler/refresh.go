package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PostRefresh godoc
// @Summary      Trigger a full data refresh
// @Description  Fetches and persists every data kind once; intended for external schedulers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/refresh [post]
func (h *Handler) PostRefresh(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-refresh")
	defer span.End()

	if err := h.market.RefreshAll(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}
