package util

import (
	"testing"
	"time"
)

func TestMonthBounds(t *testing.T) {
	start, end, err := MonthBounds("2025-06")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if start.Year() != 2025 || start.Month() != time.June || start.Day() != 1 {
		t.Errorf("expected start 2025-06-01, got %s", start.Format("2006-01-02"))
	}
	if end.Year() != 2025 || end.Month() != time.July || end.Day() != 1 {
		t.Errorf("expected end 2025-07-01, got %s", end.Format("2006-01-02"))
	}
}

func TestMonthBounds_YearRollover(t *testing.T) {
	start, end, err := MonthBounds("2025-12")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if start.Month() != time.December {
		t.Errorf("expected start in December, got %s", start.Month())
	}
	if end.Year() != 2026 || end.Month() != time.January {
		t.Errorf("expected end 2026-01-01, got %s", end.Format("2006-01-02"))
	}
}

func TestMonthBounds_Invalid(t *testing.T) {
	if _, _, err := MonthBounds("June 2025"); err == nil {
		t.Error("expected error for invalid month format")
	}
}

func TestPreviousMonth(t *testing.T) {
	year, month := PreviousMonth(2025, 6)
	if year != 2025 || month != 5 {
		t.Errorf("expected 2025-05, got %d-%d", year, month)
	}

	year, month = PreviousMonth(2025, 1)
	if year != 2024 || month != 12 {
		t.Errorf("expected 2024-12, got %d-%d", year, month)
	}
}
