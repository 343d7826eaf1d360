package attendance

import (
	"context"
	"errors"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

var (
	// errors
	ErrSessionNotFound = errors.New("attendance session not found")
)

type (
	Repository interface {
		GetSessionByID(ctx context.Context, id string, exec ...core.DBExecutor) (Session, error)
		GetSessionByAssignmentDate(ctx context.Context, assignmentID string, date time.Time, exec ...core.DBExecutor) (Session, error)
		// CreateSession inserts the session unless one already exists for
		// its (assignment, date); the stored one is returned either way
		// with created=false. This is the duplicate-session race guard.
		CreateSession(ctx context.Context, session Session, exec ...core.DBExecutor) (Session, bool, error)
		UpdateSessionStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (Session, error)
		QuerySessionsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]Session, error)

		// UpsertRecord creates or updates the record keyed by
		// (student, subject, session); concurrent submissions converge to
		// the last-applied value, never duplicate rows.
		UpsertRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		QueryRecordsBySession(ctx context.Context, sessionID string, exec ...core.DBExecutor) ([]Record, error)
		QueryRecordsByStudentSubject(ctx context.Context, studentID, subjectID string, exec ...core.DBExecutor) ([]Record, error)
	}

	Service struct {
		db         core.DB
		repo       Repository
		schoolRepo school.Repository
	}
)

func NewService(db core.DB, repo Repository, schoolRepo school.Repository) *Service {
	return &Service{db: db, repo: repo, schoolRepo: schoolRepo}
}

// CreateSession creates the session for (assignment, date) with status
// Unmarked. If one already exists the existing session is returned as a
// no-op success (created=false), not a fatal error.
func (svc *Service) CreateSession(ctx context.Context, ns NewSession) (sess Session, created bool, err error) {
	date, err := ns.Validate(core.Validate)
	if err != nil {
		return Session{}, false, err
	}
	if _, err = svc.schoolRepo.GetAssignmentByID(ctx, ns.AssignmentID); err != nil {
		return Session{}, false, err
	}

	if sess, err = svc.repo.GetSessionByAssignmentDate(ctx, ns.AssignmentID, date); err == nil {
		return sess, false, nil
	} else if err != ErrSessionNotFound {
		return Session{}, false, pkgerrors.Wrap(err, "finding session")
	}

	now := time.Now().UTC()
	sess = Session{
		AssignmentID: ns.AssignmentID,
		Date:         date,
		Status:       StatusUnmarked,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		sess, created, err = svc.repo.CreateSession(ctx, sess, tx)
		return err
	})
	if err != nil {
		return Session{}, false, pkgerrors.Wrap(err, "creating session")
	}
	return sess, created, nil
}

// Confirm upserts one Record per submitted roster student and flips the
// session status to Marked. The batch is atomic: either all records are
// applied and the status flips, or none are. Students without a subject
// enrollment are skipped and reported, not failed. Confirming a Marked
// session again is allowed (corrections) and idempotent for equal input.
func (svc *Service) Confirm(ctx context.Context, sessionID string, cs ConfirmSession) (ConfirmResult, error) {
	if err := cs.Validate(core.Validate); err != nil {
		return ConfirmResult{}, err
	}

	sess, err := svc.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return ConfirmResult{}, err
	}
	assignment, err := svc.schoolRepo.GetAssignmentByID(ctx, sess.AssignmentID)
	if err != nil {
		return ConfirmResult{}, err
	}
	roster, err := svc.schoolRepo.QueryStudentsBySection(ctx, assignment.SectionID)
	if err != nil {
		return ConfirmResult{}, pkgerrors.Wrap(err, "querying section roster")
	}

	ids := make([]string, 0, len(roster))
	for _, stud := range roster {
		ids = append(ids, stud.ID)
	}
	enrolled, err := svc.schoolRepo.QueryEnrolledStudentIDs(ctx, assignment.SubjectID, ids)
	if err != nil {
		return ConfirmResult{}, pkgerrors.Wrap(err, "querying enrollments")
	}

	res := ConfirmResult{}
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		now := time.Now().UTC()
		for _, stud := range roster {
			present, submitted := cs.Entries[stud.ID]
			if !submitted {
				continue // left untouched, not defaulted to absent
			}
			if _, ok := enrolled[stud.ID]; !ok {
				res.Skipped = append(res.Skipped, stud.ID)
				continue
			}
			rec := Record{
				SessionID: sess.ID,
				StudentID: stud.ID,
				SubjectID: assignment.SubjectID,
				Present:   present,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := svc.repo.UpsertRecord(ctx, rec, tx); err != nil {
				return pkgerrors.Wrap(err, "upserting record")
			}
			res.Applied++
		}

		sess, err = svc.repo.UpdateSessionStatus(ctx, sess.ID, StatusMarked, tx)
		return pkgerrors.Wrap(err, "marking session")
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	sort.Strings(res.Skipped)
	res.Session = sess
	return res, nil
}

func (svc *Service) GetSession(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *Service) QueryByAssignment(ctx context.Context, assignmentID string) ([]Session, error) {
	if _, err := svc.schoolRepo.GetAssignmentByID(ctx, assignmentID); err != nil {
		return nil, err
	}
	return svc.repo.QuerySessionsByAssignment(ctx, assignmentID)
}

func (svc *Service) SessionRecords(ctx context.Context, sessionID string) (Session, []Record, error) {
	sess, err := svc.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	recs, err := svc.repo.QueryRecordsBySession(ctx, sessionID)
	if err != nil {
		return Session{}, nil, pkgerrors.Wrap(err, "querying session records")
	}
	return sess, recs, nil
}

// SessionStatistics computes the aggregate counts for one session.
// Empty record sets yield zero statistics, never an error.
func (svc *Service) SessionStatistics(ctx context.Context, sessionID string) (Statistics, error) {
	_, recs, err := svc.SessionRecords(ctx, sessionID)
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(recs), nil
}
