package util

import (
	"fmt"
	"time"
)

// MonthBounds parses a YYYY-MM month string and returns the first instant
// of that month and the first instant of the next month (half-open range).
func MonthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// FormatMonth renders a time as a YYYY-MM month string.
func FormatMonth(t time.Time) string {
	return t.Format("2006-01")
}

// PreviousMonth returns the year and month for the previous month.
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
