// api/utils/pagination.go
package utils

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// NormalizePagination parses page/limit query parameters. Absent,
// non-numeric, or non-positive values fall back to the defaults, so a
// bad query string can never yield a negative offset.
func NormalizePagination(pageParam, limitParam string) (page, limit int) {
	page = DefaultPage
	if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
		page = p
	}

	limit = DefaultLimit
	if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
		limit = l
	}

	return page, limit
}

// Offset converts a 1-indexed page into a row offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total uint64, limit int) uint64 {
	if limit <= 0 {
		return 0
	}
	return (total + uint64(limit) - 1) / uint64(limit)
}
