package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo attendanceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

const sessionSelect = "SELECT id, assignment_id, date, status, created_at, updated_at FROM attendance_session"

func (repo attendanceRepository) GetSessionByID(ctx context.Context, id string, exec ...core.DBExecutor) (attendance.Session, error) {
	var sess attendance.Session
	err := repo.getExec(exec).GetContext(ctx, &sess, sessionSelect+" WHERE id = $1", id)
	if err != nil {
		return attendance.Session{}, trapNoRowsErr(err, attendance.ErrSessionNotFound, "finding session by ID")
	}
	return sess, nil
}

func (repo attendanceRepository) GetSessionByAssignmentDate(ctx context.Context, assignmentID string, date time.Time, exec ...core.DBExecutor) (attendance.Session, error) {
	var sess attendance.Session
	err := repo.getExec(exec).GetContext(ctx, &sess,
		sessionSelect+" WHERE assignment_id = $1 AND date = $2", assignmentID, date)
	if err != nil {
		return attendance.Session{}, trapNoRowsErr(err, attendance.ErrSessionNotFound, "finding session by assignment and date")
	}
	return sess, nil
}

// CreateSession relies on the (assignment_id, date) unique constraint:
// a lost insert race falls through to the stored row with created=false.
func (repo attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session, exec ...core.DBExecutor) (attendance.Session, bool, error) {
	exe := repo.getExec(exec)
	err := exe.GetContext(ctx, &sess, `
		INSERT INTO attendance_session (assignment_id, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (assignment_id, date) DO NOTHING
		RETURNING id, assignment_id, date, status, created_at, updated_at`,
		sess.AssignmentID, sess.Date, sess.Status, sess.CreatedAt, sess.UpdatedAt)
	if err == sql.ErrNoRows {
		existing, err := repo.GetSessionByAssignmentDate(ctx, sess.AssignmentID, sess.Date, exe)
		return existing, false, err
	}
	if err != nil {
		return attendance.Session{}, false, errors.Wrap(err, "inserting session")
	}
	return sess, true, nil
}

func (repo attendanceRepository) UpdateSessionStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (attendance.Session, error) {
	var sess attendance.Session
	err := repo.getExec(exec).GetContext(ctx, &sess, `
		UPDATE attendance_session SET status = $2, updated_at = $3 WHERE id = $1
		RETURNING id, assignment_id, date, status, created_at, updated_at`,
		id, status, time.Now().UTC())
	if err != nil {
		return attendance.Session{}, trapNoRowsErr(err, attendance.ErrSessionNotFound, "updating session status")
	}
	return sess, nil
}

func (repo attendanceRepository) QuerySessionsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]attendance.Session, error) {
	var sessions []attendance.Session
	err := repo.getExec(exec).SelectContext(ctx, &sessions,
		sessionSelect+" WHERE assignment_id = $1 ORDER BY date", assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions by assignment")
	}
	return sessions, nil
}

const recordSelect = "SELECT id, session_id, student_id, subject_id, present, created_at, updated_at FROM attendance_record"

func (repo attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	err := repo.getExec(exec).GetContext(ctx, &rec, `
		INSERT INTO attendance_record (session_id, student_id, subject_id, present, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, subject_id, session_id)
		DO UPDATE SET present = EXCLUDED.present, updated_at = EXCLUDED.updated_at
		RETURNING id, session_id, student_id, subject_id, present, created_at, updated_at`,
		rec.SessionID, rec.StudentID, rec.SubjectID, rec.Present, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting record")
	}
	return rec, nil
}

func (repo attendanceRepository) QueryRecordsBySession(ctx context.Context, sessionID string, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var recs []attendance.Record
	err := repo.getExec(exec).SelectContext(ctx, &recs,
		recordSelect+" WHERE session_id = $1 ORDER BY student_id", sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying records by session")
	}
	return recs, nil
}

func (repo attendanceRepository) QueryRecordsByStudentSubject(ctx context.Context, studentID, subjectID string, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var recs []attendance.Record
	err := repo.getExec(exec).SelectContext(ctx, &recs,
		recordSelect+" WHERE student_id = $1 AND subject_id = $2 ORDER BY created_at, id", studentID, subjectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying records by student and subject")
	}
	return recs, nil
}
