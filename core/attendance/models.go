package attendance

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// Session statuses. Marked is terminal for the "needs confirmation"
// signal only: records can still be corrected afterwards.
const (
	StatusUnmarked = "unmarked"
	StatusMarked   = "marked"
)

type (
	// Session is one concrete dated instance of taking attendance for an
	// Assignment. Unique per (assignment, date).
	Session struct {
		ID           string    `json:"id" db:"id"`
		AssignmentID string    `json:"assignment_id" db:"assignment_id"`
		Date         time.Time `json:"date" db:"date"`
		Status       string    `json:"status" db:"status"`
		CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	// Record is one student's present/absent entry for a session.
	// Unique per (student, subject, session); upserted, never duplicated.
	Record struct {
		ID        string    `json:"id" db:"id"`
		SessionID string    `json:"session_id" db:"session_id"`
		StudentID string    `json:"student_id" db:"student_id"`
		SubjectID string    `json:"subject_id" db:"subject_id"`
		Present   bool      `json:"present" db:"present"`
		CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	Statistics struct {
		Total      int     `json:"total"`
		Present    int     `json:"present"`
		Absent     int     `json:"absent"`
		Percentage float64 `json:"percentage"` // 1 decimal
	}
)

// NeedsConfirmation reports whether the session is still waiting for its
// first confirm.
func (s Session) NeedsConfirmation() bool { return s.Status == StatusUnmarked }

// NewSession contains information needed to create a new Session.
type NewSession struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
}

func (ns *NewSession) Validate(validate *validator.Validate) (time.Time, error) {
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	ns.Date = core.CleanString(ns.Date)

	if err := validate.Struct(ns); err != nil {
		return time.Time{}, err
	}
	date, err := time.ParseInLocation(core.Conf.School.DateFormat, ns.Date, time.UTC)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "malformed date"})
	}
	return date, nil
}

// ConfirmSession carries the batch of present/absent values keyed by
// student ID. Students absent from the map are left untouched, not
// defaulted to absent.
type ConfirmSession struct {
	Entries map[string]bool `json:"entries" validate:"required,min=1"`
}

func (cs *ConfirmSession) Validate(validate *validator.Validate) error {
	return validate.Struct(cs)
}

// ConfirmResult reports the outcome of a confirm batch. Skipped lists
// students lacking a subject enrollment: counted, not an error.
type ConfirmResult struct {
	Session Session  `json:"session"`
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped,omitempty"`
}

// ComputeStatistics derives aggregate counts from a record set. The
// percentage is rounded to 1 decimal and defined as 0 when there are no
// records (policy choice: avoid division by zero).
func ComputeStatistics(records []Record) Statistics {
	stats := Statistics{Total: len(records)}
	for _, rec := range records {
		if rec.Present {
			stats.Present++
		}
	}
	stats.Absent = stats.Total - stats.Present
	if stats.Total > 0 {
		stats.Percentage = round1(float64(stats.Present) / float64(stats.Total) * 100)
	}
	return stats
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
