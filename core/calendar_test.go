package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSemesterDateRangeContainsDate(t *testing.T) {
	tests := []struct {
		name string
		d    time.Time
	}{
		{name: "academic year start", d: date(2024, time.September, 1)},
		{name: "mid sem 1", d: date(2024, time.October, 15)},
		{name: "sem 1 last day", d: date(2024, time.December, 31)},
		{name: "sem 2 first day", d: date(2025, time.January, 1)},
		{name: "mid sem 2", d: date(2025, time.March, 8)},
		{name: "sem 2 last day", d: date(2025, time.April, 30)},
		{name: "sem 3 first day", d: date(2025, time.May, 1)},
		{name: "mid sem 3", d: date(2025, time.July, 4)},
		{name: "academic year end", d: date(2025, time.August, 31)},
		{name: "leap day", d: date(2024, time.February, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yr := DetermineAcademicYearStart(tt.d)
			sem := DetermineSemester(tt.d)
			start, end, err := SemesterDateRange(yr, sem)
			if err != nil {
				t.Fatalf("SemesterDateRange(%d, %d): %v", yr, sem, err)
			}
			if tt.d.Before(start) || tt.d.After(end) {
				t.Errorf("date %v not in semester %d range [%v, %v]", tt.d, sem, start, end)
			}
		})
	}
}

func TestDetermineSemester(t *testing.T) {
	tests := []struct {
		d    time.Time
		want int
	}{
		{date(2024, time.September, 1), 1},
		{date(2024, time.December, 31), 1},
		{date(2025, time.January, 1), 2},
		{date(2025, time.April, 30), 2},
		{date(2025, time.May, 1), 3},
		{date(2025, time.August, 31), 3},
	}
	for _, tt := range tests {
		if got := DetermineSemester(tt.d); got != tt.want {
			t.Errorf("DetermineSemester(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestAcademicYear(t *testing.T) {
	if got := AcademicYear(2024); got != "2024-2025" {
		t.Errorf("AcademicYear(2024) = %q, want %q", got, "2024-2025")
	}
	if got := AcademicYear(DetermineAcademicYearStart(date(2025, time.March, 1))); got != "2024-2025" {
		t.Errorf("label for 2025-03-01 = %q, want %q", got, "2024-2025")
	}
}

func TestSemesterDateRangeInvalid(t *testing.T) {
	if _, _, err := SemesterDateRange(2024, 4); err == nil {
		t.Error("SemesterDateRange(2024, 4) expected error, got nil")
	}
	if _, _, err := SemesterDateRange(2024, 0); err == nil {
		t.Error("SemesterDateRange(2024, 0) expected error, got nil")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		d    time.Time
		want time.Time
	}{
		{name: "monday is identity", d: date(2025, time.September, 1), want: date(2025, time.September, 1)},
		{name: "wednesday", d: date(2025, time.September, 3), want: date(2025, time.September, 1)},
		{name: "sunday belongs to previous monday", d: date(2025, time.September, 7), want: date(2025, time.September, 1)},
		{name: "across month boundary", d: date(2025, time.August, 31), want: date(2025, time.August, 25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.d); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}
