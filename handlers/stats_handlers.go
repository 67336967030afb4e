// api/handlers/stats_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"logsight/api/analytics"
	"logsight/api/utils"
)

type StatsHandlers struct {
	Analytics *analytics.Service
}

func NewStatsHandlers(svc *analytics.Service) *StatsHandlers {
	return &StatsHandlers{Analytics: svc}
}

// GetStats computes the aggregate report, optionally restricted to an
// inclusive [startDate, endDate] window.
func (h *StatsHandlers) GetStats(c *gin.Context) {
	startDate, err := utils.ParseDateParam(c.Query("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endDate, err := utils.ParseDateParam(c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	report, err := h.Analytics.GetStats(ctx, startDate, endDate)
	if err != nil {
		log.Printf("Error fetching stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, report)
}
