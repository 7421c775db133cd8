package nutrition

import (
	"strings"
	"time"

	"nutrition-tracker/internal/apperr"
)

const dayLayout = "2006-01-02"

// Days are UTC calendar days. ParseDate accepts "2006-01-02" (midnight UTC)
// or an RFC 3339 instant, returned in UTC.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation(field, field+" is required")
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperr.Validation(field, field+" must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

// DayWindow returns the half-open range [from, to) of t's UTC calendar day.
// At millisecond precision it covers 00:00:00.000 through 23:59:59.999.
func DayWindow(t time.Time) (from, to time.Time) {
	t = t.UTC()
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

func FormatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
