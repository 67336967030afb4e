// api/handlers/session_handlers.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"logsight/api/analytics"
	"logsight/api/models"
	"logsight/api/store"
	"logsight/api/utils"
)

type SessionHandlers struct {
	Store     store.LogStore
	Analytics *analytics.Service
}

func NewSessionHandlers(s store.LogStore, svc *analytics.Service) *SessionHandlers {
	return &SessionHandlers{Store: s, Analytics: svc}
}

// GetSessionPath reconstructs one session's summary and ordered page
// sequence with per-step dwell times.
func (h *SessionHandlers) GetSessionPath(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	detail, err := h.Analytics.GetSessionDetail(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No logs found for this session"})
			return
		}
		log.Printf("Error fetching path for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch path"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListSessions returns one row per distinct session, most recent
// activity first, with the usual pagination envelope.
func (h *SessionHandlers) ListSessions(c *gin.Context) {
	page, limit := utils.NormalizePagination(c.Query("page"), c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sessions, err := h.Store.SessionRows(ctx, utils.Offset(page, limit), limit)
	if err != nil {
		log.Printf("Error fetching sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}
	if sessions == nil {
		sessions = []models.SessionRow{}
	}

	total, err := h.Store.SessionCount(ctx)
	if err != nil {
		log.Printf("Error counting sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"pagination": models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: utils.TotalPages(total, limit),
		},
	})
}
