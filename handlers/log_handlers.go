// api/handlers/log_handlers.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"logsight/api/models"
	"logsight/api/store"
	"logsight/api/utils"
)

const seedSessionCount = 50

type LogHandlers struct {
	Store store.LogStore
}

func NewLogHandlers(s store.LogStore) *LogHandlers {
	return &LogHandlers{Store: s}
}

type createLogRequest struct {
	SessionID    string          `json:"sessionId"`
	UserID       *string         `json:"userId"`
	IPAddress    *string         `json:"ipAddress"`
	UserAgent    *string         `json:"userAgent"`
	Path         string          `json:"path"`
	Method       string          `json:"method"`
	StatusCode   *int32          `json:"statusCode"`
	ResponseTime *int64          `json:"responseTime"`
	Referer      *string         `json:"referer"`
	Country      *string         `json:"country"`
	City         *string         `json:"city"`
	Device       *string         `json:"device"`
	Browser      *string         `json:"browser"`
	OS           *string         `json:"os"`
	Metadata     json.RawMessage `json:"metadata"`
}

// CreateLog records one access log entry. The record's id and
// createdAt are assigned server-side; records are immutable once
// written.
func (h *LogHandlers) CreateLog(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error binding incoming access log JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.SessionID == "" || req.Path == "" || req.Method == "" || req.StatusCode == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: sessionId, path, method, statusCode"})
		return
	}

	rec := models.AccessLog{
		ID:           uuid.New().String(),
		SessionID:    req.SessionID,
		UserID:       req.UserID,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		Path:         req.Path,
		Method:       req.Method,
		StatusCode:   *req.StatusCode,
		ResponseTime: req.ResponseTime,
		Referer:      req.Referer,
		Country:      req.Country,
		City:         req.City,
		Device:       req.Device,
		Browser:      req.Browser,
		OS:           req.OS,
		Metadata:     req.Metadata,
		CreatedAt:    time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.Store.InsertLog(ctx, &rec); err != nil {
		log.Printf("Error inserting access log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create log"})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// ListLogs returns a filtered, paginated page of raw records, newest
// first, together with the pagination envelope.
func (h *LogHandlers) ListLogs(c *gin.Context) {
	filter := models.LogFilter{
		SessionID: c.Query("sessionId"),
		Path:      c.Query("path"),
	}

	if statusParam := c.Query("statusCode"); statusParam != "" {
		code, err := strconv.ParseInt(statusParam, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'statusCode' parameter. Must be an integer."})
			return
		}
		filter.StatusCode = int32(code)
	}

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
	filter.StartDate = startDate
	filter.EndDate = endDate

	page, limit := utils.NormalizePagination(c.Query("page"), c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	logs, err := h.Store.FindMany(ctx, filter, utils.Offset(page, limit), limit)
	if err != nil {
		log.Printf("Error fetching logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}
	if logs == nil {
		logs = []models.AccessLog{}
	}

	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		log.Printf("Error counting logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs": logs,
		"pagination": models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: utils.TotalPages(total, limit),
		},
	})
}

// SeedLogs fills the store with synthetic demo sessions. Not part of
// the analytics core; it only produces valid records.
func (h *LogHandlers) SeedLogs(c *gin.Context) {
	logs := utils.GenerateSeedLogs(seedSessionCount)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := h.Store.InsertLogs(ctx, logs); err != nil {
		log.Printf("Error seeding access logs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Seed data created successfully",
		"sessionsCreated": seedSessionCount,
		"logsCreated":     len(logs),
	})
}
