package school

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type Teacher struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

type Student struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	SectionID string `json:"section_id" db:"section_id"`
}

type Subject struct {
	ID   string `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

type ClassSection struct {
	ID         string `json:"id" db:"id"`
	Department string `json:"department" db:"department"`
	Semester   int    `json:"semester" db:"semester"`
	Label      string `json:"label" db:"label"`
}

// Assignment binds a Teacher to a ClassSection and Subject for one term.
type Assignment struct {
	ID           string `json:"id"`
	TeacherID    string `json:"teacher_id"`
	SectionID    string `json:"section_id"`
	SubjectID    string `json:"subject_id"`
	AcademicYear string `json:"academic_year"` // "YYYY-YYYY"
	Semester     int    `json:"semester"`      // 1..3

	// populated on query
	Teacher Teacher      `json:"teacher,omitempty"`
	Section ClassSection `json:"section,omitempty"`
	Subject Subject      `json:"subject,omitempty"`
}

// ScheduledSlot is one weekly recurring (day, period) teaching occupation
// of an Assignment. (teacher, day, period) is unique at the storage layer.
type ScheduledSlot struct {
	ID           string       `json:"id"`
	AssignmentID string       `json:"assignment_id"`
	Day          time.Weekday `json:"day"`
	Period       string       `json:"period"`
	Room         null.String  `json:"room,omitempty"`

	// populated on query
	Assignment Assignment `json:"assignment,omitempty"`
}

// Enrollment registers a Student for a Subject. Its absence means
// "not registered": marks and attendance for the pair are skipped,
// never recorded.
type Enrollment struct {
	ID        string `json:"id" db:"id"`
	StudentID string `json:"student_id" db:"student_id"`
	SubjectID string `json:"subject_id" db:"subject_id"`
}

// AssignmentFilter applies AND operation on available fields.
// AcademicYear does a substring match; Semester an exact match.
type AssignmentFilter struct {
	TeacherID    string `query:"teacher"`
	SectionID    string `query:"section"`
	SubjectID    string `query:"subject"`
	AcademicYear string `query:"year"`
	Semester     int    `query:"semester"`
}

func (f *AssignmentFilter) IsEmpty() bool {
	return f.TeacherID == "" && f.SectionID == "" && f.SubjectID == "" &&
		f.AcademicYear == "" && f.Semester == 0
}

// SlotFilter applies AND operation on available fields. A nil Day
// matches any day.
type SlotFilter struct {
	TeacherID    string
	SectionID    string
	AcademicYear string // substring match
	Semester     int
	Day          *time.Weekday
	Period       string
}
