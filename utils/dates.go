// api/utils/dates.go
package utils

import (
	"fmt"
	"time"
)

// ParseDateParam parses a startDate/endDate query parameter. RFC3339
// timestamps and bare dates (2006-01-02, midnight UTC) are accepted.
// An empty value means the bound is absent and returns nil.
func ParseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}

	return nil, fmt.Errorf("invalid date %q: use RFC3339 (e.g., 2006-01-02T15:04:05Z) or YYYY-MM-DD", value)
}
