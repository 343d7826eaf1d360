package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/shule/core/attendance"
	testutil "github.com/trezcool/shule/tests"
)

func TestAttendanceSessionsEndpoint(t *testing.T) {
	teacher := testutil.CreateTeacher(schoolRepo, "att-john")
	intruder := testutil.CreateTeacher(schoolRepo, "att-intruder")
	section := testutil.CreateSection(schoolRepo, "ATT", 2, "A")
	subject := testutil.CreateSubject(schoolRepo, "ATT201", "Registers")
	a := testutil.CreateAssignment(schoolRepo, teacher, section, subject, "2025-2026", 2)

	s1 := testutil.CreateStudent(schoolRepo, "att-present", section)
	s2 := testutil.CreateStudent(schoolRepo, "att-absent", section)
	s3 := testutil.CreateStudent(schoolRepo, "att-ghost", section) // never enrolled
	testutil.Enroll(schoolRepo, s1, subject)
	testutil.Enroll(schoolRepo, s2, subject)

	token := getToken(t, teacher, false)
	newSession := attendance.NewSession{AssignmentID: a.ID, Date: "2026-01-14"}

	var sess attendance.Session

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/sessions", token, marchallObj(t, newSession))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusCreated)

		decodeBody(t, rec, &sess)
		if sess.Status != attendance.StatusUnmarked {
			t.Errorf("Status = %s; want %s", sess.Status, attendance.StatusUnmarked)
		}
	})

	t.Run("create is idempotent", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/sessions", token, marchallObj(t, newSession))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var again attendance.Session
		decodeBody(t, rec, &again)
		if again.ID != sess.ID {
			t.Errorf("session ID = %s; want %s", again.ID, sess.ID)
		}
	})

	t.Run("create denied for other teachers", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/sessions", getToken(t, intruder, false), marchallObj(t, newSession))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusForbidden)
		checkErrBody(t, rec, errForbidden)
	})

	t.Run("list requires assignment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/sessions", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/sessions?assignment="+a.ID, token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var sessions []attendance.Session
		decodeBody(t, rec, &sessions)
		if len(sessions) != 1 || sessions[0].ID != sess.ID {
			t.Errorf("sessions = %+v; want only %s", sessions, sess.ID)
		}
	})

	t.Run("confirm", func(t *testing.T) {
		data := attendance.ConfirmSession{Entries: map[string]bool{s1.ID: true, s2.ID: false, s3.ID: true}}
		req, rec := newAuthRequest(http.MethodPut, "/v1/attendance/sessions/"+sess.ID+"/confirm", token, marchallObj(t, data))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var res attendance.ConfirmResult
		decodeBody(t, rec, &res)
		if res.Applied != 2 {
			t.Errorf("Applied = %d; want 2", res.Applied)
		}
		if len(res.Skipped) != 1 || res.Skipped[0] != s3.ID {
			t.Errorf("Skipped = %v; want [%s]", res.Skipped, s3.ID)
		}
		if res.Session.Status != attendance.StatusMarked {
			t.Errorf("Status = %s; want %s", res.Session.Status, attendance.StatusMarked)
		}
	})

	t.Run("detail", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/sessions/"+sess.ID, token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var detail struct {
			Session attendance.Session  `json:"session"`
			Records []attendance.Record `json:"records"`
		}
		decodeBody(t, rec, &detail)
		if len(detail.Records) != 2 {
			t.Errorf("len(Records) = %d; want 2", len(detail.Records))
		}
	})

	t.Run("statistics", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/sessions/"+sess.ID+"/statistics", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var stats attendance.Statistics
		decodeBody(t, rec, &stats)
		want := attendance.Statistics{Total: 2, Present: 1, Absent: 1, Percentage: 50}
		if stats != want {
			t.Errorf("stats = %+v; want %+v", stats, want)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/sessions/nope/statistics", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})
}
