package school

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrSectionNotFound    = errors.New("class section not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSlotNotFound       = errors.New("scheduled slot not found")
	ErrEnrollmentNotFound = errors.New("student is not enrolled for this subject")

	// NowFunc supplies "today" for default week anchors. mockable
	NowFunc = time.Now
)

type (
	Repository interface {
		GetTeacherByID(ctx context.Context, id string, exec ...core.DBExecutor) (Teacher, error)
		GetSectionByID(ctx context.Context, id string, exec ...core.DBExecutor) (ClassSection, error)
		GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		GetSlotByID(ctx context.Context, id string, exec ...core.DBExecutor) (ScheduledSlot, error)
		GetEnrollment(ctx context.Context, studentID, subjectID string, exec ...core.DBExecutor) (Enrollment, error)

		QueryAssignments(ctx context.Context, filter *AssignmentFilter, exec ...core.DBExecutor) ([]Assignment, error)
		QuerySlots(ctx context.Context, filter *SlotFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]ScheduledSlot, error)
		QueryStudentsBySection(ctx context.Context, sectionID string, exec ...core.DBExecutor) ([]Student, error)
		QueryEnrolledStudentIDs(ctx context.Context, subjectID string, studentIDs []string, exec ...core.DBExecutor) (map[string]Enrollment, error)
		// QueryAcademicYears returns the distinct academic-year values of an
		// entity's slots, for filter population.
		QueryAcademicYears(ctx context.Context, filter *SlotFilter, exec ...core.DBExecutor) ([]string, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) FilterAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error) {
	filter.TeacherID = core.CleanString(filter.TeacherID)
	filter.SectionID = core.CleanString(filter.SectionID)
	filter.AcademicYear = core.CleanString(filter.AcademicYear)
	return svc.repo.QueryAssignments(ctx, &filter)
}

func (svc *Service) SectionRoster(ctx context.Context, sectionID string) ([]Student, error) {
	return svc.repo.QueryStudentsBySection(ctx, sectionID)
}
