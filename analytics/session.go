// api/analytics/session.go
package analytics

import (
	"math"
	"sort"
	"time"

	"logsight/api/models"
	"logsight/api/store"
)

// SessionDetail pairs a session's summary with its chronological page
// sequence. Both are derived from the record snapshot on every call.
type SessionDetail struct {
	SessionSummary models.SessionSummary `json:"sessionSummary"`
	PathSequence   []models.PathStep     `json:"pathSequence"`
}

// roundSeconds converts a duration to whole seconds with
// nearest-integer rounding, not truncation.
func roundSeconds(d time.Duration) int64 {
	return int64(math.Round(d.Seconds()))
}

// ReconstructSession derives the summary and ordered path sequence for
// one session from its raw records. Records are sorted by created_at
// ascending with id as the explicit tie-break, so the result never
// depends on the order the store happened to return them in. An empty
// record set means the session does not exist.
func ReconstructSession(sessionID string, logs []models.AccessLog) (*SessionDetail, error) {
	if len(logs) == 0 {
		return nil, store.ErrNotFound
	}

	sorted := make([]models.AccessLog, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	steps := make([]models.PathStep, len(sorted))
	uniquePaths := make(map[string]struct{}, len(sorted))

	for i, rec := range sorted {
		steps[i] = models.PathStep{
			Step:         i + 1,
			Path:         rec.Path,
			Method:       rec.Method,
			StatusCode:   rec.StatusCode,
			ResponseTime: rec.ResponseTime,
			Timestamp:    rec.CreatedAt,
			Referer:      rec.Referer,
		}
		// Dwell time is the gap to the next request; the last step has
		// nothing to measure against.
		if i < len(sorted)-1 {
			d := roundSeconds(sorted[i+1].CreatedAt.Sub(rec.CreatedAt))
			steps[i].Duration = &d
		}
		uniquePaths[rec.Path] = struct{}{}
	}

	first := sorted[0]
	last := sorted[len(sorted)-1]

	summary := models.SessionSummary{
		SessionID:     sessionID,
		UserID:        first.UserID,
		IPAddress:     first.IPAddress,
		UserAgent:     first.UserAgent,
		Device:        first.Device,
		Browser:       first.Browser,
		OS:            first.OS,
		Country:       first.Country,
		City:          first.City,
		StartTime:     first.CreatedAt,
		EndTime:       last.CreatedAt,
		TotalDuration: roundSeconds(last.CreatedAt.Sub(first.CreatedAt)),
		TotalRequests: len(sorted),
		UniquePages:   len(uniquePaths),
		EntryPage:     first.Path,
		ExitPage:      last.Path,
	}

	return &SessionDetail{
		SessionSummary: summary,
		PathSequence:   steps,
	}, nil
}
