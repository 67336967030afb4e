// api/models/stats.go
package models

import "time"

// SessionSummary is the recomputed-on-demand overview of one session.
// It is never persisted; it goes stale as soon as new records for the
// session arrive.
type SessionSummary struct {
	SessionID     string    `json:"sessionId"`
	UserID        *string   `json:"userId"`
	IPAddress     *string   `json:"ipAddress"`
	UserAgent     *string   `json:"userAgent"`
	Device        *string   `json:"device"`
	Browser       *string   `json:"browser"`
	OS            *string   `json:"os"`
	Country       *string   `json:"country"`
	City          *string   `json:"city"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	TotalDuration int64     `json:"totalDuration"` // seconds
	TotalRequests int       `json:"totalRequests"`
	UniquePages   int       `json:"uniquePages"`
	EntryPage     string    `json:"entryPage"`
	ExitPage      string    `json:"exitPage"`
}

// PathStep is one chronological step of a session's page sequence.
// Duration is the dwell time in whole seconds until the next step;
// the last step has no successor, so its Duration is nil.
type PathStep struct {
	Step         int       `json:"step"`
	Path         string    `json:"path"`
	Method       string    `json:"method"`
	StatusCode   int32     `json:"statusCode"`
	ResponseTime *int64    `json:"responseTime"`
	Timestamp    time.Time `json:"timestamp"`
	Referer      *string   `json:"referer"`
	Duration     *int64    `json:"duration"`
}

// SessionRow is one row of the session listing, derived by grouping
// the log table on sessionId. Descriptive fields are MAX-aggregated
// across the session's records.
type SessionRow struct {
	SessionID     string    `json:"sessionId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	TotalRequests uint64    `json:"totalRequests"`
	UniquePages   uint64    `json:"uniquePages"`
	Duration      int64     `json:"duration"` // seconds
	IPAddress     *string   `json:"ipAddress"`
	Device        *string   `json:"device"`
	Browser       *string   `json:"browser"`
	OS            *string   `json:"os"`
	Country       *string   `json:"country"`
	City          *string   `json:"city"`
}

// StatBucket is one grouped-count row as the store returns it. Value
// carries the dimension value as text regardless of the underlying
// column type; numeric dimensions are parsed back by the caller.
type StatBucket struct {
	Value string
	Count uint64
}

type PathStat struct {
	Path  string `json:"path"`
	Count uint64 `json:"count"`
}

type StatusCodeStat struct {
	StatusCode int32  `json:"statusCode"`
	Count      uint64 `json:"count"`
}

type MethodStat struct {
	Method string `json:"method"`
	Count  uint64 `json:"count"`
}

type DeviceStat struct {
	Device string `json:"device"`
	Count  uint64 `json:"count"`
}

type BrowserStat struct {
	Browser string `json:"browser"`
	Count   uint64 `json:"count"`
}

type OSStat struct {
	OS    string `json:"os"`
	Count uint64 `json:"count"`
}

// StatsReport is the full analytics report for one date window.
type StatsReport struct {
	TotalVisits     uint64            `json:"totalVisits"`
	UniqueSessions  uint64            `json:"uniqueSessions"`
	PathStats       []PathStat        `json:"pathStats"`
	StatusCodeStats []StatusCodeStat  `json:"statusCodeStats"`
	MethodStats     []MethodStat      `json:"methodStats"`
	DeviceStats     []DeviceStat      `json:"deviceStats"`
	BrowserStats    []BrowserStat     `json:"browserStats"`
	OSStats         []OSStat          `json:"osStats"`
	DailyVisits     map[string]uint64 `json:"dailyVisits"`
	AvgResponseTime float64           `json:"avgResponseTime"`
}
