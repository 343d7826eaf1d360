package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assessment"
)

type assessmentRepository struct {
	exec core.DBExecutor
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(exec core.DBExecutor) *assessmentRepository {
	return &assessmentRepository{exec: exec}
}

func (repo assessmentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

const examSelect = "SELECT id, assignment_id, name, status, created_at, updated_at FROM exam_session"

func (repo assessmentRepository) GetExamByID(ctx context.Context, id string, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	var exam assessment.ExamSession
	err := repo.getExec(exec).GetContext(ctx, &exam, examSelect+" WHERE id = $1", id)
	if err != nil {
		return assessment.ExamSession{}, trapNoRowsErr(err, assessment.ErrExamNotFound, "finding exam session by ID")
	}
	return exam, nil
}

func (repo assessmentRepository) GetExamByAssignmentName(ctx context.Context, assignmentID, name string, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	var exam assessment.ExamSession
	err := repo.getExec(exec).GetContext(ctx, &exam,
		examSelect+" WHERE assignment_id = $1 AND name = $2", assignmentID, name)
	if err != nil {
		return assessment.ExamSession{}, trapNoRowsErr(err, assessment.ErrExamNotFound, "finding exam session by assignment and name")
	}
	return exam, nil
}

// CreateExam relies on the (assignment_id, name) unique constraint: a
// lost insert race falls through to the stored row.
func (repo assessmentRepository) CreateExam(ctx context.Context, exam assessment.ExamSession, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	exe := repo.getExec(exec)
	err := exe.GetContext(ctx, &exam, `
		INSERT INTO exam_session (assignment_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (assignment_id, name) DO NOTHING
		RETURNING id, assignment_id, name, status, created_at, updated_at`,
		exam.AssignmentID, exam.Name, exam.Status, exam.CreatedAt, exam.UpdatedAt)
	if err == sql.ErrNoRows {
		return repo.GetExamByAssignmentName(ctx, exam.AssignmentID, exam.Name, exe)
	}
	if err != nil {
		return assessment.ExamSession{}, errors.Wrap(err, "inserting exam session")
	}
	return exam, nil
}

func (repo assessmentRepository) UpdateExamStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (assessment.ExamSession, error) {
	var exam assessment.ExamSession
	err := repo.getExec(exec).GetContext(ctx, &exam, `
		UPDATE exam_session SET status = $2, updated_at = $3 WHERE id = $1
		RETURNING id, assignment_id, name, status, created_at, updated_at`,
		id, status, time.Now().UTC())
	if err != nil {
		return assessment.ExamSession{}, trapNoRowsErr(err, assessment.ErrExamNotFound, "updating exam session status")
	}
	return exam, nil
}

func (repo assessmentRepository) QueryExamsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]assessment.ExamSession, error) {
	var exams []assessment.ExamSession
	err := repo.getExec(exec).SelectContext(ctx, &exams,
		examSelect+" WHERE assignment_id = $1 ORDER BY created_at, name", assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying exam sessions by assignment")
	}
	return exams, nil
}

func (repo assessmentRepository) UpsertMark(ctx context.Context, mark assessment.Mark, exec ...core.DBExecutor) (assessment.Mark, error) {
	err := repo.getExec(exec).GetContext(ctx, &mark, `
		INSERT INTO mark (enrollment_id, exam_name, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (enrollment_id, exam_name)
		DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
		RETURNING id, enrollment_id, exam_name, score, created_at, updated_at`,
		mark.EnrollmentID, mark.ExamName, mark.Score, mark.CreatedAt, mark.UpdatedAt)
	if err != nil {
		return assessment.Mark{}, errors.Wrap(err, "upserting mark")
	}
	return mark, nil
}

// QueryMarksByEnrollment preserves recording order so callers can cap
// how many marks count towards internal evaluation.
func (repo assessmentRepository) QueryMarksByEnrollment(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]assessment.Mark, error) {
	var marks []assessment.Mark
	err := repo.getExec(exec).SelectContext(ctx, &marks,
		"SELECT id, enrollment_id, exam_name, score, created_at, updated_at FROM mark WHERE enrollment_id = $1 ORDER BY created_at, exam_name",
		enrollmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying marks by enrollment")
	}
	return marks, nil
}
