// api/analytics/stats.go
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"logsight/api/models"
	"logsight/api/store"
)

const topPathLimit = 10

// Service assembles analytics reports from store sub-queries. It holds
// no state of its own; every report is a fresh read.
type Service struct {
	Store store.LogStore

	// now is swappable so the trailing-7-day window is testable.
	now func() time.Time
}

func NewService(s store.LogStore) *Service {
	return &Service{
		Store: s,
		now:   time.Now,
	}
}

// GetSessionDetail reconstructs one session from its records. Returns
// store.ErrNotFound when the session has no records at all.
func (svc *Service) GetSessionDetail(ctx context.Context, sessionID string) (*SessionDetail, error) {
	logs, err := svc.Store.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return ReconstructSession(sessionID, logs)
}

// GetStats computes the full report for an optional date window. The
// sub-queries run sequentially against the live table; a burst of
// concurrent inserts can therefore shift counts slightly between
// fields, which is acceptable for a reporting view. Any store failure
// aborts the whole report.
func (svc *Service) GetStats(ctx context.Context, startDate, endDate *time.Time) (*models.StatsReport, error) {
	filter := models.LogFilter{StartDate: startDate, EndDate: endDate}

	totalVisits, err := svc.Store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	uniqueSessions, err := svc.Store.DistinctSessionCount(ctx, filter)
	if err != nil {
		return nil, err
	}

	pathBuckets, err := svc.Store.GroupCount(ctx, store.DimPath, filter)
	if err != nil {
		return nil, err
	}
	if len(pathBuckets) > topPathLimit {
		pathBuckets = pathBuckets[:topPathLimit]
	}
	pathStats := make([]models.PathStat, 0, len(pathBuckets))
	for _, b := range pathBuckets {
		pathStats = append(pathStats, models.PathStat{Path: b.Value, Count: b.Count})
	}

	statusBuckets, err := svc.Store.GroupCount(ctx, store.DimStatusCode, filter)
	if err != nil {
		return nil, err
	}
	statusCodeStats := make([]models.StatusCodeStat, 0, len(statusBuckets))
	for _, b := range statusBuckets {
		code, err := strconv.ParseInt(b.Value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("unexpected status code bucket %q: %w", b.Value, err)
		}
		statusCodeStats = append(statusCodeStats, models.StatusCodeStat{StatusCode: int32(code), Count: b.Count})
	}

	methodBuckets, err := svc.Store.GroupCount(ctx, store.DimMethod, filter)
	if err != nil {
		return nil, err
	}
	methodStats := make([]models.MethodStat, 0, len(methodBuckets))
	for _, b := range methodBuckets {
		methodStats = append(methodStats, models.MethodStat{Method: b.Value, Count: b.Count})
	}

	deviceBuckets, err := svc.Store.GroupCount(ctx, store.DimDevice, filter)
	if err != nil {
		return nil, err
	}
	deviceStats := make([]models.DeviceStat, 0, len(deviceBuckets))
	for _, b := range deviceBuckets {
		deviceStats = append(deviceStats, models.DeviceStat{Device: b.Value, Count: b.Count})
	}

	browserBuckets, err := svc.Store.GroupCount(ctx, store.DimBrowser, filter)
	if err != nil {
		return nil, err
	}
	browserStats := make([]models.BrowserStat, 0, len(browserBuckets))
	for _, b := range browserBuckets {
		browserStats = append(browserStats, models.BrowserStat{Browser: b.Value, Count: b.Count})
	}

	osBuckets, err := svc.Store.GroupCount(ctx, store.DimOS, filter)
	if err != nil {
		return nil, err
	}
	osStats := make([]models.OSStat, 0, len(osBuckets))
	for _, b := range osBuckets {
		osStats = append(osStats, models.OSStat{OS: b.Value, Count: b.Count})
	}

	// Daily visits are always restricted to the trailing 7 days,
	// intersected with the caller's window rather than replaced by it.
	sevenDaysAgo := svc.now().UTC().AddDate(0, 0, -7)
	recentFilter := filter
	if recentFilter.StartDate == nil || recentFilter.StartDate.Before(sevenDaysAgo) {
		recentFilter.StartDate = &sevenDaysAgo
	}
	stamps, err := svc.Store.Timestamps(ctx, recentFilter)
	if err != nil {
		return nil, err
	}
	dailyVisits := BucketDaily(stamps)

	avgResponseTime, err := svc.Store.AverageResponseTime(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.StatsReport{
		TotalVisits:     totalVisits,
		UniqueSessions:  uniqueSessions,
		PathStats:       pathStats,
		StatusCodeStats: statusCodeStats,
		MethodStats:     methodStats,
		DeviceStats:     deviceStats,
		BrowserStats:    browserStats,
		OSStats:         osStats,
		DailyVisits:     dailyVisits,
		AvgResponseTime: avgResponseTime,
	}, nil
}

// BucketDaily groups timestamps per UTC calendar day, keyed YYYY-MM-DD.
func BucketDaily(stamps []time.Time) map[string]uint64 {
	buckets := make(map[string]uint64, len(stamps))
	for _, t := range stamps {
		buckets[t.UTC().Format("2006-01-02")]++
	}
	return buckets
}
