package core

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// The academic year starts in September and is split into three semester
// windows: Sep-Dec (1), Jan-Apr (2) and May-Aug (3). Every calendar date
// falls in exactly one window; window boundaries belong to their own
// semester.
const academicYearStartMonth = time.September

var errInvalidSemester = errors.New("semester must be 1, 2 or 3")

// DetermineSemester maps a date to its semester number.
func DetermineSemester(d time.Time) int {
	switch m := d.Month(); {
	case m >= time.September:
		return 1
	case m <= time.April:
		return 2
	default:
		return 3
	}
}

// DetermineAcademicYearStart returns the calendar year the academic year
// containing d started in.
func DetermineAcademicYearStart(d time.Time) int {
	if d.Month() >= academicYearStartMonth {
		return d.Year()
	}
	return d.Year() - 1
}

// AcademicYear formats the "YYYY-YYYY" label for an academic year start.
func AcademicYear(startYear int) string {
	return fmt.Sprintf("%d-%d", startYear, startYear+1)
}

// SemesterDateRange returns the inclusive [start, end] date range of a
// semester within the academic year starting in startYear. It is the
// inverse of DetermineSemester/DetermineAcademicYearStart: for any date d,
// SemesterDateRange(DetermineAcademicYearStart(d), DetermineSemester(d))
// contains d.
func SemesterDateRange(startYear, semester int) (start, end time.Time, err error) {
	switch semester {
	case 1:
		start = time.Date(startYear, time.September, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(startYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	case 2:
		start = time.Date(startYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(startYear+1, time.April, 30, 0, 0, 0, 0, time.UTC)
	case 3:
		start = time.Date(startYear+1, time.May, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(startYear+1, time.August, 31, 0, 0, 0, 0, time.UTC)
	default:
		err = errInvalidSemester
	}
	return start, end, err
}

// WeekStart normalizes d to the Monday of its week (time part dropped).
func WeekStart(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}
