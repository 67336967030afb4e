// api/analytics/session_test.go
package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsight/api/models"
	"logsight/api/store"
)

func strPtr(s string) *string { return &s }

func sessionLog(id, sessionID, path, method string, code int32, at time.Time) models.AccessLog {
	return models.AccessLog{
		ID:         id,
		SessionID:  sessionID,
		Path:       path,
		Method:     method,
		StatusCode: code,
		CreatedAt:  at,
	}
}

func TestReconstructSessionOrdersStepsAndComputesDwell(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	// Deliberately out of order; reconstruction must not depend on
	// store-provided ordering.
	logs := []models.AccessLog{
		sessionLog("c", "s1", "/checkout", "POST", 201, base.Add(95*time.Second)),
		sessionLog("a", "s1", "/home", "GET", 200, base),
		sessionLog("b", "s1", "/cart", "GET", 200, base.Add(30*time.Second)),
	}

	detail, err := ReconstructSession("s1", logs)
	require.NoError(t, err)
	require.Len(t, detail.PathSequence, 3)

	steps := detail.PathSequence
	assert.Equal(t, 1, steps[0].Step)
	assert.Equal(t, "/home", steps[0].Path)
	require.NotNil(t, steps[0].Duration)
	assert.Equal(t, int64(30), *steps[0].Duration)

	assert.Equal(t, 2, steps[1].Step)
	assert.Equal(t, "/cart", steps[1].Path)
	require.NotNil(t, steps[1].Duration)
	assert.Equal(t, int64(65), *steps[1].Duration)

	assert.Equal(t, 3, steps[2].Step)
	assert.Equal(t, "/checkout", steps[2].Path)
	assert.Nil(t, steps[2].Duration)

	summary := detail.SessionSummary
	assert.Equal(t, "s1", summary.SessionID)
	assert.Equal(t, int64(95), summary.TotalDuration)
	assert.Equal(t, 3, summary.TotalRequests)
	assert.Equal(t, 3, summary.UniquePages)
	assert.Equal(t, "/home", summary.EntryPage)
	assert.Equal(t, "/checkout", summary.ExitPage)
	assert.Equal(t, base, summary.StartTime)
	assert.Equal(t, base.Add(95*time.Second), summary.EndTime)
}

func TestReconstructSessionEmptyIsNotFound(t *testing.T) {
	_, err := ReconstructSession("missing", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestReconstructSessionTieBreaksOnID(t *testing.T) {
	at := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		sessionLog("b", "s1", "/second", "GET", 200, at),
		sessionLog("a", "s1", "/first", "GET", 200, at),
	}

	detail, err := ReconstructSession("s1", logs)
	require.NoError(t, err)
	assert.Equal(t, "/first", detail.PathSequence[0].Path)
	assert.Equal(t, "/second", detail.PathSequence[1].Path)
	assert.Equal(t, int64(0), detail.SessionSummary.TotalDuration)
}

func TestReconstructSessionUniquePagesCountsRevisitsOnce(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		sessionLog("a", "s1", "/home", "GET", 200, base),
		sessionLog("b", "s1", "/pricing", "GET", 200, base.Add(10*time.Second)),
		sessionLog("c", "s1", "/home", "GET", 200, base.Add(20*time.Second)),
	}

	detail, err := ReconstructSession("s1", logs)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.SessionSummary.TotalRequests)
	assert.Equal(t, 2, detail.SessionSummary.UniquePages)
	assert.Equal(t, "/home", detail.SessionSummary.EntryPage)
	assert.Equal(t, "/home", detail.SessionSummary.ExitPage)
}

func TestReconstructSessionRoundsDwellToNearestSecond(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		sessionLog("a", "s1", "/a", "GET", 200, base),
		sessionLog("b", "s1", "/b", "GET", 200, base.Add(1400*time.Millisecond)),
		sessionLog("c", "s1", "/c", "GET", 200, base.Add(2900*time.Millisecond)),
	}

	detail, err := ReconstructSession("s1", logs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *detail.PathSequence[0].Duration) // 1.4s rounds down
	assert.Equal(t, int64(2), *detail.PathSequence[1].Duration) // 1.5s rounds up
	assert.Equal(t, int64(3), detail.SessionSummary.TotalDuration)
}

func TestReconstructSessionCopiesFirstRecordFields(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	first := sessionLog("a", "s1", "/home", "GET", 200, base)
	first.UserID = strPtr("user_1")
	first.Device = strPtr("Mobile")
	first.Browser = strPtr("Firefox")
	second := sessionLog("b", "s1", "/cart", "GET", 200, base.Add(time.Minute))
	second.Device = strPtr("Desktop")

	detail, err := ReconstructSession("s1", []models.AccessLog{second, first})
	require.NoError(t, err)

	summary := detail.SessionSummary
	require.NotNil(t, summary.UserID)
	assert.Equal(t, "user_1", *summary.UserID)
	require.NotNil(t, summary.Device)
	assert.Equal(t, "Mobile", *summary.Device)
	require.NotNil(t, summary.Browser)
	assert.Equal(t, "Firefox", *summary.Browser)
}

func TestReconstructSessionIsIdempotent(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.AccessLog{
		sessionLog("b", "s1", "/cart", "GET", 200, base.Add(30*time.Second)),
		sessionLog("a", "s1", "/home", "GET", 200, base),
	}

	first, err := ReconstructSession("s1", logs)
	require.NoError(t, err)
	second, err := ReconstructSession("s1", logs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
