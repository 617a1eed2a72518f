package handler

import (
	"net/http"
	"strings"

	"gaspulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetGas godoc
// @Summary      Get current gas fees for a blockchain
// @Description  Returns slow/standard/fast fee tiers in the chain's native unit, with USD values per typical transaction
// @Tags         gas
// @Produce      json
// @Param        blockchain  path  string  true  "Blockchain (ethereum, bitcoin, ton, solana)"
// @Success      200  {object}  domain.GasQuoteUSD
// @Failure      400  {object}  map[string]string
// @Router       /api/gas/{blockchain} [get]
func (h *Handler) GetGas(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-gas")
	defer span.End()

	blockchain := strings.ToLower(c.Param("blockchain"))
	span.SetAttributes(attribute.String("blockchain", blockchain))

	if _, ok := domain.NativeSymbol[blockchain]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                 "unsupported blockchain: " + blockchain,
			"supported_blockchains": domain.SupportedBlockchains,
		})
		return
	}

	quote, err := h.market.Gas(ctx, blockchain)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}
