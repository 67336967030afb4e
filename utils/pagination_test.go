// api/utils/pagination_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePaginationDefaults(t *testing.T) {
	page, limit := NormalizePagination("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	page, limit = NormalizePagination("abc", "xyz")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	// Non-positive values must never produce a negative offset.
	page, limit = NormalizePagination("0", "-5")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}

func TestNormalizePaginationExplicitValues(t *testing.T) {
	page, limit := NormalizePagination("3", "50")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 100, Offset(page, limit))
}

func TestOffsetFirstPageIsZero(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 20, Offset(2, 20))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, uint64(0), TotalPages(0, 20))
	assert.Equal(t, uint64(1), TotalPages(1, 20))
	assert.Equal(t, uint64(1), TotalPages(20, 20))
	assert.Equal(t, uint64(2), TotalPages(21, 20))
	assert.Equal(t, uint64(3), TotalPages(41, 20))
}
