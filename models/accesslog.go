// api/models/accesslog.go
package models

import (
	"encoding/json"
	"time"
)

// AccessLog represents one completed HTTP request captured by the
// tracking snippet. Records are append-only: once written they are
// never updated or deleted.
type AccessLog struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"sessionId"`
	UserID       *string         `json:"userId"`
	Path         string          `json:"path"`
	Method       string          `json:"method"`
	StatusCode   int32           `json:"statusCode"`
	ResponseTime *int64          `json:"responseTime"` // milliseconds; nil = unmeasured
	Referer      *string         `json:"referer"`
	IPAddress    *string         `json:"ipAddress"`
	UserAgent    *string         `json:"userAgent"`
	Device       *string         `json:"device"`
	Browser      *string         `json:"browser"`
	OS           *string         `json:"os"`
	Country      *string         `json:"country"`
	City         *string         `json:"city"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// LogFilter narrows record queries. Zero values mean "no restriction";
// date bounds are inclusive on both ends.
type LogFilter struct {
	SessionID  string
	Path       string // substring match
	StatusCode int32  // 0 = unset
	StartDate  *time.Time
	EndDate    *time.Time
}

// IsZero reports whether the filter restricts nothing at all.
func (f LogFilter) IsZero() bool {
	return f.SessionID == "" && f.Path == "" && f.StatusCode == 0 &&
		f.StartDate == nil && f.EndDate == nil
}

// Pagination is the envelope returned alongside every listing.
type Pagination struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      uint64 `json:"total"`
	TotalPages uint64 `json:"totalPages"`
}
