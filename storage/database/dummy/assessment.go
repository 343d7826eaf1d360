package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assessment"
)

type assessmentRepository struct {
	db *assessmentTables
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *DB) *assessmentRepository {
	return &assessmentRepository{db: db.assessment}
}

func (repo *assessmentRepository) GetExamByID(ctx context.Context, id string, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if e, ok := repo.db.exams[id]; ok {
		return *e, nil
	}
	return assessment.ExamSession{}, assessment.ErrExamNotFound
}

func (repo *assessmentRepository) GetExamByAssignmentName(ctx context.Context, assignmentID, name string, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.findExam(assignmentID, name)
}

func (repo *assessmentRepository) findExam(assignmentID, name string) (assessment.ExamSession, error) {
	for _, e := range repo.db.exams {
		if e.AssignmentID == assignmentID && e.Name == name {
			return *e, nil
		}
	}
	return assessment.ExamSession{}, assessment.ErrExamNotFound
}

func (repo *assessmentRepository) CreateExam(ctx context.Context, exam assessment.ExamSession, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if existing, err := repo.findExam(exam.AssignmentID, exam.Name); err == nil {
		return existing, nil
	}
	exam.ID = uuid.New().String()
	repo.db.exams[exam.ID] = &exam
	return exam, nil
}

func (repo *assessmentRepository) UpdateExamStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	exam, ok := repo.db.exams[id]
	if !ok {
		return assessment.ExamSession{}, assessment.ErrExamNotFound
	}
	exam.Status = status
	exam.UpdatedAt = time.Now().UTC()
	return *exam, nil
}

func (repo *assessmentRepository) QueryExamsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]assessment.ExamSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exams := make([]assessment.ExamSession, 0)
	for _, e := range repo.db.exams {
		if e.AssignmentID == assignmentID {
			exams = append(exams, *e)
		}
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].CreatedAt.Before(exams[j].CreatedAt) })
	return exams, nil
}

func (repo *assessmentRepository) UpsertMark(ctx context.Context, mark assessment.Mark, exec ...core.DBExecutor) (assessment.Mark, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.marks {
		if existing.EnrollmentID == mark.EnrollmentID && existing.ExamName == mark.ExamName {
			existing.Score = mark.Score
			existing.UpdatedAt = time.Now().UTC()
			return *existing, nil
		}
	}
	mark.ID = uuid.New().String()
	repo.db.marks[mark.ID] = &mark
	return mark, nil
}

func (repo *assessmentRepository) QueryMarksByEnrollment(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]assessment.Mark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	marks := make([]assessment.Mark, 0)
	for _, m := range repo.db.marks {
		if m.EnrollmentID == enrollmentID {
			marks = append(marks, *m)
		}
	}
	sort.Slice(marks, func(i, j int) bool {
		if !marks[i].CreatedAt.Equal(marks[j].CreatedAt) {
			return marks[i].CreatedAt.Before(marks[j].CreatedAt)
		}
		return marks[i].ExamName < marks[j].ExamName
	})
	return marks, nil
}
