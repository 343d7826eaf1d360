package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/school"
)

var (
	// errors
	ErrExamNotFound = errors.New("exam session not found")
)

type (
	Repository interface {
		GetExamByID(ctx context.Context, id string, exec ...core.DBExecutor) (ExamSession, error)
		GetExamByAssignmentName(ctx context.Context, assignmentID, name string, exec ...core.DBExecutor) (ExamSession, error)
		// CreateExam inserts the exam session unless one already exists
		// for its (assignment, name); the stored one is returned either way.
		CreateExam(ctx context.Context, exam ExamSession, exec ...core.DBExecutor) (ExamSession, error)
		UpdateExamStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (ExamSession, error)
		QueryExamsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]ExamSession, error)

		// UpsertMark creates or updates the mark keyed by
		// (enrollment, exam name), overwriting the score on re-submission.
		UpsertMark(ctx context.Context, mark Mark, exec ...core.DBExecutor) (Mark, error)
		// QueryMarksByEnrollment returns an enrollment's marks in the
		// order they were recorded.
		QueryMarksByEnrollment(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]Mark, error)
	}

	Service struct {
		db         core.DB
		repo       Repository
		schoolRepo school.Repository
		attRepo    attendance.Repository
		mailSvc    core.EmailService
	}
)

func NewService(db core.DB, repo Repository, schoolRepo school.Repository, attRepo attendance.Repository, mailSvc core.EmailService) *Service {
	return &Service{db: db, repo: repo, schoolRepo: schoolRepo, attRepo: attRepo, mailSvc: mailSvc}
}

// RecordMarks upserts one Mark per enrolled student for the named exam
// session, creating the session on first use and flipping it to
// Completed. The batch is atomic. Students without a subject enrollment
// are skipped (no Mark created, no error raised).
func (svc *Service) RecordMarks(ctx context.Context, nm NewMarks) (RecordResult, error) {
	if err := nm.Validate(core.Validate); err != nil {
		return RecordResult{}, err
	}
	assignment, err := svc.schoolRepo.GetAssignmentByID(ctx, nm.AssignmentID)
	if err != nil {
		return RecordResult{}, err
	}

	// deterministic iteration over the submitted map
	studentIDs := make([]string, 0, len(nm.Scores))
	for sid := range nm.Scores {
		studentIDs = append(studentIDs, sid)
	}
	sort.Strings(studentIDs)

	enrolled, err := svc.schoolRepo.QueryEnrolledStudentIDs(ctx, assignment.SubjectID, studentIDs)
	if err != nil {
		return RecordResult{}, pkgerrors.Wrap(err, "querying enrollments")
	}

	res := RecordResult{}
	err = core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		now := time.Now().UTC()
		exam := ExamSession{
			AssignmentID: assignment.ID,
			Name:         nm.Exam,
			Status:       StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if exam, err = svc.repo.CreateExam(ctx, exam, tx); err != nil {
			return pkgerrors.Wrap(err, "creating exam session")
		}

		for _, sid := range studentIDs {
			enr, ok := enrolled[sid]
			if !ok {
				res.Skipped = append(res.Skipped, sid)
				continue
			}
			mark := Mark{
				EnrollmentID: enr.ID,
				ExamName:     nm.Exam,
				Score:        nm.Scores[sid],
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if _, err := svc.repo.UpsertMark(ctx, mark, tx); err != nil {
				return pkgerrors.Wrap(err, "upserting mark")
			}
			res.Applied++
		}

		res.Exam, err = svc.repo.UpdateExamStatus(ctx, exam.ID, StatusCompleted, tx)
		return pkgerrors.Wrap(err, "completing exam session")
	})
	if err != nil {
		return RecordResult{}, err
	}
	return res, nil
}

// Report computes the derived metrics for every enrolled student of an
// assignment and classifies them against the configured thresholds.
func (svc *Service) Report(ctx context.Context, assignmentID string) (Report, error) {
	assignment, err := svc.schoolRepo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return Report{}, err
	}
	roster, err := svc.schoolRepo.QueryStudentsBySection(ctx, assignment.SectionID)
	if err != nil {
		return Report{}, pkgerrors.Wrap(err, "querying section roster")
	}
	ids := make([]string, 0, len(roster))
	for _, stud := range roster {
		ids = append(ids, stud.ID)
	}
	enrolled, err := svc.schoolRepo.QueryEnrolledStudentIDs(ctx, assignment.SubjectID, ids)
	if err != nil {
		return Report{}, pkgerrors.Wrap(err, "querying enrollments")
	}

	conf := core.Conf.School
	report := Report{Assignment: assignment}
	for _, stud := range roster {
		enr, ok := enrolled[stud.ID]
		if !ok {
			continue // not registered for the subject; skipped, not an error
		}

		recs, err := svc.attRepo.QueryRecordsByStudentSubject(ctx, stud.ID, assignment.SubjectID)
		if err != nil {
			return Report{}, pkgerrors.Wrap(err, "querying attendance records")
		}
		marks, err := svc.repo.QueryMarksByEnrollment(ctx, enr.ID)
		if err != nil {
			return Report{}, pkgerrors.Wrap(err, "querying marks")
		}

		row := ReportRow{
			Student:           stud,
			AttendancePercent: attendance.ComputeStatistics(recs).Percentage,
			CIE:               CIEScore(marks, conf.CIEMarkLimit, conf.CIEDivisor),
		}
		goodAtt := row.AttendancePercent >= conf.AttendanceThreshold
		goodCIE := row.CIE >= conf.CIEThreshold
		row.NeedsSupport = !goodAtt || !goodCIE

		report.Classification.Total++
		if goodAtt {
			report.Classification.GoodAttendance++
		}
		if goodCIE {
			report.Classification.GoodCIE++
		}
		if row.NeedsSupport {
			report.Classification.NeedSupport++
		}
		report.Rows = append(report.Rows, row)
	}
	report.Classification.PassRate = passRate(report.Classification.Total, report.Classification.NeedSupport)
	return report, nil
}

// NotifyTeacher emails the assignment's teacher a needs-support summary
// of the report.
func (svc *Service) NotifyTeacher(ctx context.Context, report Report) error {
	teacher, err := svc.schoolRepo.GetTeacherByID(ctx, report.Assignment.TeacherID)
	if err != nil {
		return err
	}
	needSupport := make([]ReportRow, 0, report.Classification.NeedSupport)
	for _, row := range report.Rows {
		if row.NeedsSupport {
			needSupport = append(needSupport, row)
		}
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
		Subject:      fmt.Sprintf("Support report: %s (%s)", report.Assignment.Subject.Name, report.Assignment.AcademicYear),
		TemplateName: "needs-support-report",
		TemplateData: struct {
			Teacher       school.Teacher
			Report        Report
			NeedSupport   []ReportRow
			AttendanceMin float64
			CIEMin        int
		}{teacher, report, needSupport, core.Conf.School.AttendanceThreshold, core.Conf.School.CIEThreshold},
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

// passRate is the share of students not needing support, rounded to the
// nearest integer. Defined as 100 when there are no students.
func passRate(total, needSupport int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(total-needSupport) / float64(total) * 100))
}
