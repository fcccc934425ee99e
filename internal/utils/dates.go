package utils

import (
	"fmt"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Today returns t as a "YYYY-MM-DD" calendar day in t's location.
func Today(t time.Time) string { return t.Format(DayLayout) }

// MonthKey returns t as "YYYY-MM".
func MonthKey(t time.Time) string { return t.Format(MonthLayout) }

// Timestamp formats t the way browsers serialize instants (millisecond precision, UTC).
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ParseDay validates a "YYYY-MM-DD" string.
func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseMonth validates a "YYYY-MM" string.
func ParseMonth(s string) (time.Time, error) {
	d, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return d, nil
}
