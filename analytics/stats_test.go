// api/analytics/stats_test.go
package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsight/api/models"
	"logsight/api/store"
)

func newTestService(t *testing.T, now time.Time, logs []models.AccessLog) *Service {
	t.Helper()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.InsertLogs(context.Background(), logs))
	svc := NewService(mem)
	svc.now = func() time.Time { return now }
	return svc
}

func statsLog(id, sessionID, path string, code int32, at time.Time) models.AccessLog {
	return models.AccessLog{
		ID:         id,
		SessionID:  sessionID,
		Path:       path,
		Method:     "GET",
		StatusCode: code,
		CreatedAt:  at,
	}
}

func TestGetStatsStatusCodeCountsSumToTotalVisits(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		statsLog("a", "s1", "/home", 200, now.Add(-time.Hour)),
		statsLog("b", "s1", "/cart", 200, now.Add(-2*time.Hour)),
		statsLog("c", "s2", "/home", 404, now.Add(-3*time.Hour)),
		statsLog("d", "s3", "/faq", 500, now.Add(-4*time.Hour)),
	}
	svc := newTestService(t, now, logs)

	report, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(4), report.TotalVisits)
	assert.Equal(t, uint64(3), report.UniqueSessions)

	var sum uint64
	for _, s := range report.StatusCodeStats {
		sum += s.Count
	}
	assert.Equal(t, report.TotalVisits, sum)
}

func TestGetStatsTopPathsTruncatedAndTieBroken(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	var logs []models.AccessLog
	// 12 distinct paths, one hit each, plus a clear winner.
	for i := 0; i < 12; i++ {
		logs = append(logs, statsLog(fmt.Sprintf("p%02d", i), "s1",
			fmt.Sprintf("/page-%02d", i), 200, now.Add(-time.Hour)))
	}
	logs = append(logs,
		statsLog("w1", "s1", "/winner", 200, now.Add(-time.Hour)),
		statsLog("w2", "s1", "/winner", 200, now.Add(-time.Hour)),
	)
	svc := newTestService(t, now, logs)

	report, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)

	require.Len(t, report.PathStats, 10)
	assert.Equal(t, "/winner", report.PathStats[0].Path)
	assert.Equal(t, uint64(2), report.PathStats[0].Count)
	// Ties resolve lexicographically on path.
	for i := 1; i < len(report.PathStats)-1; i++ {
		assert.Less(t, report.PathStats[i].Path, report.PathStats[i+1].Path)
	}
}

func TestGetStatsAvgResponseTime(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	rt := func(ms int64) *int64 { return &ms }

	withSamples := []models.AccessLog{
		statsLog("a", "s1", "/a", 200, now.Add(-time.Hour)),
		statsLog("b", "s1", "/b", 200, now.Add(-time.Hour)),
		statsLog("c", "s1", "/c", 200, now.Add(-time.Hour)),
	}
	withSamples[0].ResponseTime = rt(100)
	withSamples[1].ResponseTime = rt(300)
	// withSamples[2] stays unmeasured and must not drag the mean down.

	svc := newTestService(t, now, withSamples)
	report, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 200.0, report.AvgResponseTime)

	svc = newTestService(t, now, []models.AccessLog{
		statsLog("a", "s1", "/a", 200, now.Add(-time.Hour)),
	})
	report, err = svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.AvgResponseTime)
}

func TestGetStatsDailyVisitsTrailingWindow(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		statsLog("a", "s1", "/a", 200, now.Add(-24*time.Hour)),
		statsLog("b", "s1", "/b", 200, now.Add(-24*time.Hour)),
		statsLog("c", "s2", "/c", 200, now.Add(-3*24*time.Hour)),
		statsLog("d", "s3", "/d", 200, now.Add(-10*24*time.Hour)), // outside the window
	}
	svc := newTestService(t, now, logs)

	report, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(4), report.TotalVisits)
	assert.Equal(t, map[string]uint64{
		"2025-08-14": 2,
		"2025-08-12": 1,
	}, report.DailyVisits)

	var dailySum uint64
	for _, n := range report.DailyVisits {
		dailySum += n
	}
	assert.LessOrEqual(t, dailySum, report.TotalVisits)
}

func TestGetStatsDailyVisitsIntersectsExplicitWindow(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		statsLog("a", "s1", "/a", 200, now.Add(-24*time.Hour)),
		statsLog("b", "s2", "/b", 200, now.Add(-5*24*time.Hour)),
	}
	svc := newTestService(t, now, logs)

	// startDate inside the trailing 7 days narrows dailyVisits further.
	startDate := now.Add(-2 * 24 * time.Hour)
	report, err := svc.GetStats(context.Background(), &startDate, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), report.TotalVisits)
	assert.Equal(t, map[string]uint64{"2025-08-14": 1}, report.DailyVisits)
}

func TestGetStatsNullableDimensionsOmitNullGroups(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	desktop := "Desktop"

	withDevice := statsLog("a", "s1", "/a", 200, now.Add(-time.Hour))
	withDevice.Device = &desktop
	withoutDevice := statsLog("b", "s2", "/b", 200, now.Add(-time.Hour))

	svc := newTestService(t, now, []models.AccessLog{withDevice, withoutDevice})
	report, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)

	require.Len(t, report.DeviceStats, 1)
	assert.Equal(t, "Desktop", report.DeviceStats[0].Device)
	assert.Equal(t, uint64(1), report.DeviceStats[0].Count)
}

func TestGetStatsDateFilterInclusiveBounds(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	boundary := now.Add(-2 * 24 * time.Hour)
	logs := []models.AccessLog{
		statsLog("a", "s1", "/a", 200, boundary),
		statsLog("b", "s2", "/b", 200, boundary.Add(-time.Minute)),
	}
	svc := newTestService(t, now, logs)

	report, err := svc.GetStats(context.Background(), &boundary, &boundary)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), report.TotalVisits)
}

func TestGetStatsIsIdempotent(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		statsLog("a", "s1", "/a", 200, now.Add(-time.Hour)),
		statsLog("b", "s2", "/b", 404, now.Add(-2*time.Hour)),
	}
	svc := newTestService(t, now, logs)

	first, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)
	second, err := svc.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// failingStore wraps the memory store but fails a single sub-query.
type failingStore struct {
	store.LogStore
}

func (f *failingStore) GroupCount(ctx context.Context, dim store.Dimension, filter models.LogFilter) ([]models.StatBucket, error) {
	return nil, errors.New("connection lost")
}

func TestGetStatsStoreFailureAbortsWholeReport(t *testing.T) {
	mem := store.NewMemoryStore()
	require.NoError(t, mem.InsertLogs(context.Background(), []models.AccessLog{
		statsLog("a", "s1", "/a", 200, time.Now().UTC()),
	}))

	svc := NewService(&failingStore{LogStore: mem})

	report, err := svc.GetStats(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Nil(t, report)
}

func TestBucketDaily(t *testing.T) {
	stamps := []time.Time{
		time.Date(2025, 8, 14, 23, 59, 0, 0, time.UTC),
		time.Date(2025, 8, 15, 0, 1, 0, 0, time.UTC),
		time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, map[string]uint64{
		"2025-08-14": 1,
		"2025-08-15": 2,
	}, BucketDaily(stamps))
}
