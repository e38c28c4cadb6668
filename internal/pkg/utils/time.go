package utils

import (
	"time"

	"telemed-service/internal/pkg/constvars"
)

// ParseOptionalDate parses a YYYY-MM-DD value, returning nil for an empty
// string.
func ParseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(constvars.DateLayout, value, time.Local)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// EndOfDay returns the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
