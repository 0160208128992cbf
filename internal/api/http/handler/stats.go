package handler

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

// StatsService serves trading statistics for a DARWIN code.
type StatsService interface {
	Get(ctx context.Context, code string) (model.DarwinexStats, error)
}

// DARWIN codes are three uppercase letters.
var darwinCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Stats handles the Darwinex statistics endpoint.
type Stats struct {
	service StatsService
	logger  *logger.Logger
}

// NewStats creates a new Stats handler.
func NewStats(service StatsService, logger *logger.Logger) *Stats {
	return &Stats{
		service: service,
		logger:  logger,
	}
}

// Get serves parsed (or fallback) statistics for a DARWIN code. Responses
// are edge-cacheable for five minutes.
func (h *Stats) Get(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: code"})
		return
	}
	if !darwinCodeRe.MatchString(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid DARWIN code format. Expected 3 uppercase letters."})
		return
	}

	stats, err := h.service.Get(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Stats handler: failed to fetch stats",
			"code", code,
			"error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch Darwinex statistics",
			"details": err.Error(),
		})
		return
	}

	c.Header("Cache-Control", "public, s-maxage=300, stale-while-revalidate=600")
	c.JSON(http.StatusOK, stats)
}
