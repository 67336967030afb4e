// api/utils/dates_test.go
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateParamEmpty(t *testing.T) {
	ts, err := ParseDateParam("")
	require.NoError(t, err)
	assert.Nil(t, ts)
}

func TestParseDateParamRFC3339(t *testing.T) {
	ts, err := ParseDateParam("2025-08-15T12:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2025, 8, 15, 12, 30, 0, 0, time.UTC), ts.UTC())
}

func TestParseDateParamDateOnly(t *testing.T) {
	ts, err := ParseDateParam("2025-08-15")
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), ts.UTC())
}

func TestParseDateParamInvalid(t *testing.T) {
	for _, value := range []string{"yesterday", "15/08/2025", "2025-13-40"} {
		ts, err := ParseDateParam(value)
		assert.Error(t, err, value)
		assert.Nil(t, ts)
	}
}
