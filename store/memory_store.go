// api/store/memory_store.go
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"logsight/api/models"
)

// MemoryStore keeps records in process memory. It exists for local
// development and tests, where standing up ClickHouse or Postgres is
// overkill. Not suitable for production: nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	logs []models.AccessLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertLog(ctx context.Context, rec *models.AccessLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *rec)
	return nil
}

func (s *MemoryStore) InsertLogs(ctx context.Context, recs []models.AccessLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, recs...)
	return nil
}

func matches(rec *models.AccessLog, filter models.LogFilter) bool {
	if filter.SessionID != "" && rec.SessionID != filter.SessionID {
		return false
	}
	if filter.Path != "" && !strings.Contains(rec.Path, filter.Path) {
		return false
	}
	if filter.StatusCode != 0 && rec.StatusCode != filter.StatusCode {
		return false
	}
	if filter.StartDate != nil && rec.CreatedAt.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && rec.CreatedAt.After(*filter.EndDate) {
		return false
	}
	return true
}

func (s *MemoryStore) filtered(filter models.LogFilter) []models.AccessLog {
	var out []models.AccessLog
	for i := range s.logs {
		if matches(&s.logs[i], filter) {
			out = append(out, s.logs[i])
		}
	}
	return out
}

func (s *MemoryStore) FindBySessionID(ctx context.Context, sessionID string) ([]models.AccessLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered(models.LogFilter{SessionID: sessionID}), nil
}

func (s *MemoryStore) FindMany(ctx context.Context, filter models.LogFilter, skip, limit int) ([]models.AccessLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.filtered(filter)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context, filter models.LogFilter) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count uint64
	for i := range s.logs {
		if matches(&s.logs[i], filter) {
			count++
		}
	}
	return count, nil
}

func dimensionValue(rec *models.AccessLog, dim Dimension) (string, bool) {
	switch dim {
	case DimPath:
		return rec.Path, true
	case DimStatusCode:
		return strconv.Itoa(int(rec.StatusCode)), true
	case DimMethod:
		return rec.Method, true
	case DimDevice:
		if rec.Device == nil {
			return "", false
		}
		return *rec.Device, true
	case DimBrowser:
		if rec.Browser == nil {
			return "", false
		}
		return *rec.Browser, true
	case DimOS:
		if rec.OS == nil {
			return "", false
		}
		return *rec.OS, true
	default:
		return "", false
	}
}

func (s *MemoryStore) GroupCount(ctx context.Context, dim Dimension, filter models.LogFilter) ([]models.StatBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]uint64)
	for i := range s.logs {
		if !matches(&s.logs[i], filter) {
			continue
		}
		value, ok := dimensionValue(&s.logs[i], dim)
		if !ok {
			continue
		}
		counts[value]++
	}

	buckets := make([]models.StatBucket, 0, len(counts))
	for value, count := range counts {
		buckets = append(buckets, models.StatBucket{Value: value, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count == buckets[j].Count {
			return buckets[i].Value < buckets[j].Value
		}
		return buckets[i].Count > buckets[j].Count
	})
	return buckets, nil
}

func (s *MemoryStore) DistinctSessionCount(ctx context.Context, filter models.LogFilter) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for i := range s.logs {
		if matches(&s.logs[i], filter) {
			seen[s.logs[i].SessionID] = struct{}{}
		}
	}
	return uint64(len(seen)), nil
}

func (s *MemoryStore) AverageResponseTime(ctx context.Context, filter models.LogFilter) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum, n int64
	for i := range s.logs {
		if matches(&s.logs[i], filter) && s.logs[i].ResponseTime != nil {
			sum += *s.logs[i].ResponseTime
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (s *MemoryStore) Timestamps(ctx context.Context, filter models.LogFilter) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stamps []time.Time
	for i := range s.logs {
		if matches(&s.logs[i], filter) {
			stamps = append(stamps, s.logs[i].CreatedAt)
		}
	}
	return stamps, nil
}

func maxString(current *string, candidate *string) *string {
	if candidate == nil {
		return current
	}
	if current == nil || *candidate > *current {
		return candidate
	}
	return current
}

func (s *MemoryStore) SessionRows(ctx context.Context, skip, limit int) ([]models.SessionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type sessionAgg struct {
		row   models.SessionRow
		paths map[string]struct{}
	}

	groups := make(map[string]*sessionAgg)
	for i := range s.logs {
		rec := &s.logs[i]
		agg, ok := groups[rec.SessionID]
		if !ok {
			agg = &sessionAgg{
				row: models.SessionRow{
					SessionID: rec.SessionID,
					StartTime: rec.CreatedAt,
					EndTime:   rec.CreatedAt,
				},
				paths: make(map[string]struct{}),
			}
			groups[rec.SessionID] = agg
		}
		if rec.CreatedAt.Before(agg.row.StartTime) {
			agg.row.StartTime = rec.CreatedAt
		}
		if rec.CreatedAt.After(agg.row.EndTime) {
			agg.row.EndTime = rec.CreatedAt
		}
		agg.row.TotalRequests++
		agg.paths[rec.Path] = struct{}{}
		agg.row.IPAddress = maxString(agg.row.IPAddress, rec.IPAddress)
		agg.row.Device = maxString(agg.row.Device, rec.Device)
		agg.row.Browser = maxString(agg.row.Browser, rec.Browser)
		agg.row.OS = maxString(agg.row.OS, rec.OS)
		agg.row.Country = maxString(agg.row.Country, rec.Country)
		agg.row.City = maxString(agg.row.City, rec.City)
	}

	rows := make([]models.SessionRow, 0, len(groups))
	for _, agg := range groups {
		agg.row.UniquePages = uint64(len(agg.paths))
		agg.row.Duration = roundSeconds(agg.row.EndTime.Sub(agg.row.StartTime))
		rows = append(rows, agg.row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EndTime.Equal(rows[j].EndTime) {
			return rows[i].SessionID < rows[j].SessionID
		}
		return rows[i].EndTime.After(rows[j].EndTime)
	})

	if skip >= len(rows) {
		return nil, nil
	}
	rows = rows[skip:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *MemoryStore) SessionCount(ctx context.Context) (uint64, error) {
	return s.DistinctSessionCount(ctx, models.LogFilter{})
}
