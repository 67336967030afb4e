// api/utils/seed_test.go
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSeedLogsProducesValidRecords(t *testing.T) {
	logs := GenerateSeedLogs(5)
	require.NotEmpty(t, logs)

	sessions := make(map[string]int)
	now := time.Now().UTC()

	for _, rec := range logs {
		assert.NotEmpty(t, rec.ID)
		assert.NotEmpty(t, rec.SessionID)
		assert.NotEmpty(t, rec.Path)
		assert.NotEmpty(t, rec.Method)
		assert.Greater(t, rec.StatusCode, int32(0))
		require.NotNil(t, rec.ResponseTime)
		assert.GreaterOrEqual(t, *rec.ResponseTime, int64(10))
		assert.False(t, rec.CreatedAt.IsZero())
		// Sessions start within the trailing week; later steps may run
		// slightly past now.
		assert.True(t, rec.CreatedAt.After(now.Add(-8*24*time.Hour)))

		sessions[rec.SessionID]++
		if rec.Method == "GET" {
			assert.Equal(t, int32(200), rec.StatusCode)
		}
	}

	assert.Len(t, sessions, 5)
	for sessionID, count := range sessions {
		assert.GreaterOrEqual(t, count, 3, sessionID)
		assert.LessOrEqual(t, count, 12, sessionID)
	}
}

func TestGenerateSeedLogsSessionsAreChronological(t *testing.T) {
	logs := GenerateSeedLogs(3)

	lastSeen := make(map[string]time.Time)
	for _, rec := range logs {
		if prev, ok := lastSeen[rec.SessionID]; ok {
			assert.True(t, rec.CreatedAt.After(prev),
				"session %s steps must move forward in time", rec.SessionID)
		}
		lastSeen[rec.SessionID] = rec.CreatedAt
	}
}

func TestGenerateSeedLogsFirstStepIsAlwaysGet(t *testing.T) {
	logs := GenerateSeedLogs(10)

	seen := make(map[string]bool)
	for _, rec := range logs {
		if !seen[rec.SessionID] {
			seen[rec.SessionID] = true
			assert.Equal(t, "GET", rec.Method)
			assert.Nil(t, rec.Referer)
		}
	}
}
