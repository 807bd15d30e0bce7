package util

import (
	"time"
)

// ParseDate tries YYYY-MM-DD, then RFC3339. Returns (t, true) if any worked.
// The result is truncated to midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DayStart(t), true
	}
	return time.Time{}, false
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month start n months after t's month.
// time.Date normalizes month overflow, so December+1 lands on January.
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the day offset from a to b. Negative when b precedes a.
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
