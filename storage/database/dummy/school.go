package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	db *schoolTables
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db.school}
}

// Seeding helpers; the roster/assignment store is externally managed in
// production, so these exist for tests and the demo seed only.

func (repo *schoolRepository) AddTeacher(t school.Teacher) school.Teacher {
	repo.db.Lock()
	defer repo.db.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	repo.db.teachers[t.ID] = &t
	return t
}

func (repo *schoolRepository) AddStudent(s school.Student) school.Student {
	repo.db.Lock()
	defer repo.db.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	repo.db.students[s.ID] = &s
	return s
}

func (repo *schoolRepository) AddSubject(s school.Subject) school.Subject {
	repo.db.Lock()
	defer repo.db.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	repo.db.subjects[s.ID] = &s
	return s
}

func (repo *schoolRepository) AddSection(s school.ClassSection) school.ClassSection {
	repo.db.Lock()
	defer repo.db.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	repo.db.sections[s.ID] = &s
	return s
}

func (repo *schoolRepository) AddAssignment(a school.Assignment) school.Assignment {
	repo.db.Lock()
	defer repo.db.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	repo.db.assignments[a.ID] = &a
	return a
}

func (repo *schoolRepository) AddSlot(s school.ScheduledSlot) school.ScheduledSlot {
	repo.db.Lock()
	defer repo.db.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	repo.db.slots[s.ID] = &s
	return s
}

func (repo *schoolRepository) AddEnrollment(e school.Enrollment) school.Enrollment {
	repo.db.Lock()
	defer repo.db.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	repo.db.enrollments[e.ID] = &e
	return e
}

// school.Repository implementation

func (repo *schoolRepository) GetTeacherByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (repo *schoolRepository) GetSectionByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.ClassSection, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if s, ok := repo.db.sections[id]; ok {
		return *s, nil
	}
	return school.ClassSection{}, school.ErrSectionNotFound
}

func (repo *schoolRepository) GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if a, ok := repo.db.assignments[id]; ok {
		return repo.expand(*a), nil
	}
	return school.Assignment{}, school.ErrAssignmentNotFound
}

func (repo *schoolRepository) GetSlotByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.ScheduledSlot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if s, ok := repo.db.slots[id]; ok {
		slot := *s
		if a, ok := repo.db.assignments[slot.AssignmentID]; ok {
			slot.Assignment = repo.expand(*a)
		}
		return slot, nil
	}
	return school.ScheduledSlot{}, school.ErrSlotNotFound
}

func (repo *schoolRepository) GetEnrollment(ctx context.Context, studentID, subjectID string, exec ...core.DBExecutor) (school.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	for _, e := range repo.db.enrollments {
		if e.StudentID == studentID && e.SubjectID == subjectID {
			return *e, nil
		}
	}
	return school.Enrollment{}, school.ErrEnrollmentNotFound
}

func (repo *schoolRepository) QueryAssignments(ctx context.Context, filter *school.AssignmentFilter, exec ...core.DBExecutor) ([]school.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]school.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if filter != nil {
			if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
				continue
			}
			if filter.SectionID != "" && a.SectionID != filter.SectionID {
				continue
			}
			if filter.SubjectID != "" && a.SubjectID != filter.SubjectID {
				continue
			}
			if filter.AcademicYear != "" && !strings.Contains(a.AcademicYear, filter.AcademicYear) {
				continue
			}
			if filter.Semester != 0 && a.Semester != filter.Semester {
				continue
			}
		}
		assignments = append(assignments, repo.expand(*a))
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (repo *schoolRepository) QuerySlots(ctx context.Context, filter *school.SlotFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]school.ScheduledSlot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	slots := make([]school.ScheduledSlot, 0, len(repo.db.slots))
	for _, s := range repo.db.slots {
		a, ok := repo.db.assignments[s.AssignmentID]
		if !ok {
			continue
		}
		if filter != nil {
			if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
				continue
			}
			if filter.SectionID != "" && a.SectionID != filter.SectionID {
				continue
			}
			if filter.AcademicYear != "" && !strings.Contains(a.AcademicYear, filter.AcademicYear) {
				continue
			}
			if filter.Semester != 0 && a.Semester != filter.Semester {
				continue
			}
			if filter.Day != nil && s.Day != *filter.Day {
				continue
			}
			if filter.Period != "" && s.Period != filter.Period {
				continue
			}
		}
		slot := *s
		slot.Assignment = repo.expand(*a)
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return slots[i].Period < slots[j].Period
	})
	return slots, nil
}

func (repo *schoolRepository) QueryStudentsBySection(ctx context.Context, sectionID string, exec ...core.DBExecutor) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, 0)
	for _, s := range repo.db.students {
		if s.SectionID == sectionID {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *schoolRepository) QueryEnrolledStudentIDs(ctx context.Context, subjectID string, studentIDs []string, exec ...core.DBExecutor) (map[string]school.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	enrolled := make(map[string]school.Enrollment)
	for _, e := range repo.db.enrollments {
		if e.SubjectID == subjectID && wanted[e.StudentID] {
			enrolled[e.StudentID] = *e
		}
	}
	return enrolled, nil
}

func (repo *schoolRepository) QueryAcademicYears(ctx context.Context, filter *school.SlotFilter, exec ...core.DBExecutor) ([]string, error) {
	slots, err := repo.QuerySlots(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	years := make([]string, 0)
	for _, s := range slots {
		if yr := s.Assignment.AcademicYear; !seen[yr] {
			seen[yr] = true
			years = append(years, yr)
		}
	}
	sort.Strings(years)
	return years, nil
}

// expand populates an assignment's related display records.
// callers must hold at least a read lock.
func (repo *schoolRepository) expand(a school.Assignment) school.Assignment {
	if t, ok := repo.db.teachers[a.TeacherID]; ok {
		a.Teacher = *t
	}
	if s, ok := repo.db.sections[a.SectionID]; ok {
		a.Section = *s
	}
	if s, ok := repo.db.subjects[a.SubjectID]; ok {
		a.Subject = *s
	}
	return a
}
