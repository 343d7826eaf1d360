package assessment

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

// Exam session statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type (
	// ExamSession is one named instance of recording marks for an
	// Assignment. Unique per (assignment, name).
	ExamSession struct {
		ID           string    `json:"id" db:"id"`
		AssignmentID string    `json:"assignment_id" db:"assignment_id"`
		Name         string    `json:"name" db:"name"`
		Status       string    `json:"status" db:"status"`
		CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	// Mark is a score for one enrollment and exam name. Unique per
	// (enrollment, exam name); upserted on re-submission.
	Mark struct {
		ID           string    `json:"id" db:"id"`
		EnrollmentID string    `json:"enrollment_id" db:"enrollment_id"`
		ExamName     string    `json:"exam_name" db:"exam_name"`
		Score        float64   `json:"score" db:"score"`
		CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
	}

	// ReportRow carries one student's derived metrics for an assignment.
	ReportRow struct {
		Student           school.Student `json:"student"`
		AttendancePercent float64        `json:"attendance_percent"` // 1 decimal
		CIE               int            `json:"cie"`
		NeedsSupport      bool           `json:"needs_support"`
	}

	// Classification aggregates threshold counts for an assignment's
	// enrolled students. PassRate is 100 when Total is 0.
	Classification struct {
		Total          int `json:"total"`
		GoodAttendance int `json:"good_attendance"`
		GoodCIE        int `json:"good_cie"`
		NeedSupport    int `json:"need_support"`
		PassRate       int `json:"pass_rate"`
	}

	Report struct {
		Assignment     school.Assignment `json:"assignment"`
		Rows           []ReportRow       `json:"rows"`
		Classification Classification    `json:"classification"`
	}
)

// NewMarks contains a batch of scores keyed by student ID for one exam
// session name.
type NewMarks struct {
	AssignmentID string             `json:"assignment_id" validate:"required"`
	Exam         string             `json:"exam" validate:"required"`
	Scores       map[string]float64 `json:"scores" validate:"required,min=1,dive,gte=0"`
}

func (nm *NewMarks) Validate(validate *validator.Validate) error {
	nm.AssignmentID = core.CleanString(nm.AssignmentID)
	nm.Exam = core.CleanString(nm.Exam)
	return validate.Struct(nm)
}

// RecordResult reports the outcome of a marks batch. Skipped lists
// students lacking a subject enrollment: a no-op, not an error.
type RecordResult struct {
	Exam    ExamSession `json:"exam"`
	Applied int         `json:"applied"`
	Skipped []string    `json:"skipped,omitempty"`
}

// CIEScore sums the first limit marks (in the order they were recorded),
// divides by divisor and rounds up to the nearest integer. An empty mark
// list scores 0.
func CIEScore(marks []Mark, limit int, divisor float64) int {
	if len(marks) == 0 || divisor == 0 {
		return 0
	}
	if limit > len(marks) {
		limit = len(marks)
	}
	var sum float64
	for _, m := range marks[:limit] {
		sum += m.Score
	}
	return int(math.Ceil(sum / divisor))
}
