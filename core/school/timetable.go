package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var errNoTimetableEntity = errors.New("a teacher or a class section is required")

// Cell kinds
const (
	CellEmpty  = ""
	CellLesson = "lesson"
	CellBreak  = "break"
	CellLunch  = "lunch"
)

type (
	// TimetableRequest selects the entity and week to materialize.
	// A zero Anchor defaults to "today"; AcademicYear does a substring
	// match, Semester an exact match, From/To an explicit date range the
	// slot's weekday must fall in when projected onto the anchor week.
	TimetableRequest struct {
		TeacherID    string
		SectionID    string
		Anchor       time.Time
		AcademicYear string
		Semester     int
		From, To     *time.Time
	}

	TimetableCell struct {
		Kind string         `json:"kind"`
		Slot *ScheduledSlot `json:"slot,omitempty"`
	}

	// TimetableRow is one period line of the grid: either a teaching
	// period with one cell per weekday, or a break/lunch marker row
	// (markers carry no cells; they are never filled by a slot).
	TimetableRow struct {
		Period string          `json:"period"`
		Kind   string          `json:"kind"`
		Cells  []TimetableCell `json:"cells,omitempty"`
	}

	// Timetable is an immutable day×period grid plus navigation metadata.
	Timetable struct {
		WeekStart     time.Time      `json:"week_start"`
		PrevWeek      time.Time      `json:"prev_week"`
		NextWeek      time.Time      `json:"next_week"`
		Days          []time.Weekday `json:"days"`
		Dates         []time.Time    `json:"dates"` // anchor-week date of each day
		Rows          []TimetableRow `json:"rows"`
		AcademicYears []string       `json:"academic_years"` // distinct values for filter population
	}
)

// Timetable materializes the weekly grid for a teacher or class section.
// Read-only: no write side effects.
func (svc *Service) Timetable(ctx context.Context, req TimetableRequest) (Timetable, error) {
	if req.TeacherID == "" && req.SectionID == "" {
		return Timetable{}, core.NewValidationError(errNoTimetableEntity)
	}

	anchor := req.Anchor
	if anchor.IsZero() {
		anchor = NowFunc()
	}
	weekStart := core.WeekStart(anchor)

	conf := core.Conf.School
	days := conf.Weekdays

	// project each weekday onto the anchor week
	dayIdx := make(map[time.Weekday]int, len(days))
	dates := make([]time.Time, len(days))
	for i, d := range days {
		dayIdx[d] = i
		dates[i] = weekStart.AddDate(0, 0, (int(d)+6)%7)
	}

	filter := &SlotFilter{
		TeacherID:    req.TeacherID,
		SectionID:    req.SectionID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
	}
	ordering := []core.DBOrdering{
		{Field: "day", Ascending: true},
		{Field: "period", Ascending: true},
	}
	slots, err := svc.repo.QuerySlots(ctx, filter, ordering)
	if err != nil {
		return Timetable{}, errors.Wrap(err, "querying scheduled slots")
	}

	years, err := svc.repo.QueryAcademicYears(ctx, &SlotFilter{TeacherID: req.TeacherID, SectionID: req.SectionID})
	if err != nil {
		return Timetable{}, errors.Wrap(err, "querying academic years")
	}

	// grid[day][period]; two slots targeting the same cell should not
	// happen for one teacher, but if they do the later one silently
	// overwrites the earlier (documented limitation, not a guarantee).
	grid := make(map[time.Weekday]map[string]*ScheduledSlot, len(days))
	for i := range slots {
		slot := slots[i]
		di, ok := dayIdx[slot.Day]
		if !ok {
			continue // slot on a non-teaching day
		}
		if !inDateRange(dates[di], req.From, req.To) {
			continue
		}
		if grid[slot.Day] == nil {
			grid[slot.Day] = make(map[string]*ScheduledSlot, len(conf.Periods))
		}
		grid[slot.Day][slot.Period] = &slot
	}

	rows := make([]TimetableRow, 0, len(conf.Periods)+2)
	for _, period := range conf.Periods {
		cells := make([]TimetableCell, len(days))
		for i, d := range days {
			if slot := grid[d][period]; slot != nil {
				cells[i] = TimetableCell{Kind: CellLesson, Slot: slot}
			}
		}
		rows = append(rows, TimetableRow{Period: period, Kind: CellLesson, Cells: cells})

		switch period {
		case conf.BreakAfterPeriod:
			rows = append(rows, TimetableRow{Period: conf.BreakLabel, Kind: CellBreak})
		case conf.LunchAfterPeriod:
			rows = append(rows, TimetableRow{Period: conf.LunchLabel, Kind: CellLunch})
		}
	}

	return Timetable{
		WeekStart:     weekStart,
		PrevWeek:      weekStart.AddDate(0, 0, -7),
		NextWeek:      weekStart.AddDate(0, 0, 7),
		Days:          days,
		Dates:         dates,
		Rows:          rows,
		AcademicYears: years,
	}, nil
}

func inDateRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}
