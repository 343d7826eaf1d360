package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTables
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) GetSessionByID(ctx context.Context, id string, exec ...core.DBExecutor) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo *attendanceRepository) GetSessionByAssignmentDate(ctx context.Context, assignmentID string, date time.Time, exec ...core.DBExecutor) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.findSession(assignmentID, date)
}

func (repo *attendanceRepository) findSession(assignmentID string, date time.Time) (attendance.Session, error) {
	for _, s := range repo.db.sessions {
		if s.AssignmentID == assignmentID && s.Date.Equal(date) {
			return *s, nil
		}
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo *attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session, exec ...core.DBExecutor) (attendance.Session, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if existing, err := repo.findSession(sess.AssignmentID, sess.Date); err == nil {
		return existing, false, nil
	}
	sess.ID = uuid.New().String()
	repo.db.sessions[sess.ID] = &sess
	return sess, true, nil
}

func (repo *attendanceRepository) UpdateSessionStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sess, ok := repo.db.sessions[id]
	if !ok {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	sess.Status = status
	sess.UpdatedAt = time.Now().UTC()
	return *sess, nil
}

func (repo *attendanceRepository) QuerySessionsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]attendance.Session, 0)
	for _, s := range repo.db.sessions {
		if s.AssignmentID == assignmentID {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })
	return sessions, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.records {
		if existing.SessionID == rec.SessionID && existing.StudentID == rec.StudentID && existing.SubjectID == rec.SubjectID {
			existing.Present = rec.Present
			existing.UpdatedAt = time.Now().UTC()
			return *existing, nil
		}
	}
	rec.ID = uuid.New().String()
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) QueryRecordsBySession(ctx context.Context, sessionID string, exec ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.records {
		if r.SessionID == sessionID {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}

func (repo *attendanceRepository) QueryRecordsByStudentSubject(ctx context.Context, studentID, subjectID string, exec ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.records {
		if r.StudentID == studentID && r.SubjectID == subjectID {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.Before(records[j].CreatedAt) })
	return records, nil
}
