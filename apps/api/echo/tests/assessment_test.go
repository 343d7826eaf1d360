package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/trezcool/shule/core/assessment"
	"github.com/trezcool/shule/core/attendance"
	emailsvc "github.com/trezcool/shule/services/email"
	testutil "github.com/trezcool/shule/tests"
)

func TestAssessmentEndpoints(t *testing.T) {
	teacher := testutil.CreateTeacher(schoolRepo, "ass-mary")
	section := testutil.CreateSection(schoolRepo, "ASS", 2, "A")
	subject := testutil.CreateSubject(schoolRepo, "ASS201", "Evaluation")
	a := testutil.CreateAssignment(schoolRepo, teacher, section, subject, "2025-2026", 2)

	good := testutil.CreateStudent(schoolRepo, "ass-good", section)
	weak := testutil.CreateStudent(schoolRepo, "ass-weak", section)
	ghost := testutil.CreateStudent(schoolRepo, "ass-ghost", section) // never enrolled
	testutil.Enroll(schoolRepo, good, subject)
	testutil.Enroll(schoolRepo, weak, subject)

	token := getToken(t, teacher, false)

	// one confirmed attendance session so the report has attendance data
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/sessions", token,
		marchallObj(t, attendance.NewSession{AssignmentID: a.ID, Date: "2026-01-12"}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusCreated)
	var sess attendance.Session
	decodeBody(t, rec, &sess)

	req, rec = newAuthRequest(http.MethodPut, "/v1/attendance/sessions/"+sess.ID+"/confirm", token,
		marchallObj(t, attendance.ConfirmSession{Entries: map[string]bool{good.ID: true, weak.ID: false}}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	t.Run("record marks", func(t *testing.T) {
		data := assessment.NewMarks{
			AssignmentID: a.ID,
			Exam:         "IA-1",
			Scores:       map[string]float64{good.ID: 45, weak.ID: 8, ghost.ID: 30},
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessment/marks", token, marchallObj(t, data))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var res assessment.RecordResult
		decodeBody(t, rec, &res)
		if res.Applied != 2 {
			t.Errorf("Applied = %d; want 2", res.Applied)
		}
		if len(res.Skipped) != 1 || res.Skipped[0] != ghost.ID {
			t.Errorf("Skipped = %v; want [%s]", res.Skipped, ghost.ID)
		}
		if res.Exam.Status != assessment.StatusCompleted {
			t.Errorf("exam status = %s; want %s", res.Exam.Status, assessment.StatusCompleted)
		}
	})

	// a second exam pushes good's CIE above the threshold while weak stays under
	req, rec = newAuthRequest(http.MethodPost, "/v1/assessment/marks", token,
		marchallObj(t, assessment.NewMarks{
			AssignmentID: a.ID,
			Exam:         "IA-2",
			Scores:       map[string]float64{good.ID: 45, weak.ID: 4},
		}))
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	t.Run("record marks requires a valid payload", func(t *testing.T) {
		data := assessment.NewMarks{AssignmentID: a.ID, Exam: "IA-3"}
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessment/marks", token, marchallObj(t, data))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("report requires assignment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessment/report", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessment/report?assignment="+a.ID, token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var report assessment.Report
		decodeBody(t, rec, &report)
		if report.Classification.Total != 2 {
			t.Errorf("Total = %d; want 2", report.Classification.Total)
		}
		rows := make(map[string]assessment.ReportRow, len(report.Rows))
		for _, row := range report.Rows {
			rows[row.Student.ID] = row
		}
		if row := rows[good.ID]; row.AttendancePercent != 100 || row.NeedsSupport {
			t.Errorf("good row = %+v; want 100%% attendance, no support flag", row)
		}
		if row := rows[weak.ID]; row.AttendancePercent != 0 || !row.NeedsSupport {
			t.Errorf("weak row = %+v; want 0%% attendance, support flag", row)
		}
		if _, ok := rows[ghost.ID]; ok {
			t.Error("unenrolled student must not appear in the report")
		}
	})

	t.Run("report with notification", func(t *testing.T) {
		sent := len(emailsvc.SentMessages)
		req, rec := newAuthRequest(http.MethodGet, "/v1/assessment/report?assignment="+a.ID+"&notify=1", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		if len(emailsvc.SentMessages) != sent+1 {
			t.Fatalf("len(SentMessages) = %d; want %d", len(emailsvc.SentMessages), sent+1)
		}
		msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
		if len(msg.To) != 1 || msg.To[0].Address != teacher.Email {
			t.Errorf("To = %+v; want [%s]", msg.To, teacher.Email)
		}
		if !strings.Contains(msg.Subject, subject.Name) {
			t.Errorf("Subject = %q; want it to mention %q", msg.Subject, subject.Name)
		}
	})
}
