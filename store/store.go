// api/store/store.go
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"logsight/api/models"
)

// ErrNotFound is returned when a lookup matches zero records.
var ErrNotFound = errors.New("not found")

// roundSeconds converts a duration to whole seconds with
// nearest-integer rounding, not truncation.
func roundSeconds(d time.Duration) int64 {
	return int64(math.Round(d.Seconds()))
}

// Dimension names a groupable column of the access log table. The set
// is closed so dimension names can be spliced into GROUP BY clauses
// without escaping.
type Dimension string

const (
	DimPath       Dimension = "path"
	DimStatusCode Dimension = "status_code"
	DimMethod     Dimension = "method"
	DimDevice     Dimension = "device"
	DimBrowser    Dimension = "browser"
	DimOS         Dimension = "os"
)

func (d Dimension) Valid() bool {
	switch d {
	case DimPath, DimStatusCode, DimMethod, DimDevice, DimBrowser, DimOS:
		return true
	default:
		return false
	}
}

// Nullable reports whether the dimension's column admits NULLs. NULL
// groups are dropped from grouped counts for these dimensions.
func (d Dimension) Nullable() bool {
	switch d {
	case DimDevice, DimBrowser, DimOS:
		return true
	default:
		return false
	}
}

// LogStore is the persistence contract for access log records. Two
// implementations exist: ClickHouse (primary) and PostgreSQL. All
// derived views (sessions, stats) are computed on read; the store only
// ever appends.
type LogStore interface {
	InsertLog(ctx context.Context, rec *models.AccessLog) error
	InsertLogs(ctx context.Context, recs []models.AccessLog) error

	// FindBySessionID returns every record of one session. Callers must
	// not rely on the returned order.
	FindBySessionID(ctx context.Context, sessionID string) ([]models.AccessLog, error)

	// FindMany returns a page of matching records, newest first
	// (created_at DESC, id DESC).
	FindMany(ctx context.Context, filter models.LogFilter, skip, limit int) ([]models.AccessLog, error)
	Count(ctx context.Context, filter models.LogFilter) (uint64, error)

	// GroupCount returns (value, count) pairs for one dimension,
	// count DESC with the value as secondary ASC key. NULL groups are
	// omitted for nullable dimensions.
	GroupCount(ctx context.Context, dim Dimension, filter models.LogFilter) ([]models.StatBucket, error)

	DistinctSessionCount(ctx context.Context, filter models.LogFilter) (uint64, error)

	// AverageResponseTime averages response_time over matching records
	// with a measured value. Returns 0 when no such records exist.
	AverageResponseTime(ctx context.Context, filter models.LogFilter) (float64, error)

	// Timestamps projects created_at for all matching records.
	Timestamps(ctx context.Context, filter models.LogFilter) ([]time.Time, error)

	// SessionRows returns one row per distinct session, most recent
	// activity first.
	SessionRows(ctx context.Context, skip, limit int) ([]models.SessionRow, error)
	SessionCount(ctx context.Context) (uint64, error)
}
