package tests

import (
	"net/http"
	"testing"
	"time"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core/school"
	testutil "github.com/trezcool/shule/tests"
)

func TestTimetableEndpoint(t *testing.T) {
	teacher := testutil.CreateTeacher(schoolRepo, "tt-jane")
	section := testutil.CreateSection(schoolRepo, "TT", 2, "A")
	subject := testutil.CreateSubject(schoolRepo, "TT201", "Scheduling")
	a := testutil.CreateAssignment(schoolRepo, teacher, section, subject, "2025-2026", 2)
	slot := testutil.CreateSlot(schoolRepo, a, time.Monday, "1")

	t.Run("requires auth", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/timetable")
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusUnauthorized)
		checkErrBody(t, rec, errMissingToken)
	})

	t.Run("defaults to own grid", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable?date=2026-01-14", getToken(t, teacher, false))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var tt school.Timetable
		decodeBody(t, rec, &tt)
		if got := tt.WeekStart.Format("2006-01-02"); got != "2026-01-12" {
			t.Errorf("WeekStart = %s; want 2026-01-12", got)
		}
		var found bool
		for _, row := range tt.Rows {
			if row.Period == "1" && len(row.Cells) > 0 && row.Cells[0].Kind == school.CellLesson {
				found = row.Cells[0].Slot != nil && row.Cells[0].Slot.ID == slot.ID
			}
		}
		if !found {
			t.Error("own slot missing from Monday period 1")
		}
	})

	t.Run("section grid", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable?section="+section.ID, getToken(t, teacher, false))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("malformed date", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timetable?date=14/01/2026", getToken(t, teacher, false))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})
}

func TestAssignmentsEndpoint(t *testing.T) {
	mine := testutil.CreateTeacher(schoolRepo, "asg-mine")
	other := testutil.CreateTeacher(schoolRepo, "asg-other")
	section := testutil.CreateSection(schoolRepo, "ASG", 2, "A")
	subject := testutil.CreateSubject(schoolRepo, "ASG201", "Assignments")
	a1 := testutil.CreateAssignment(schoolRepo, mine, section, subject, "2025-2026", 2)
	testutil.CreateAssignment(schoolRepo, other, section, subject, "2025-2026", 2)

	t.Run("teacher sees own only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", getToken(t, mine, false))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var assignments []school.Assignment
		decodeBody(t, rec, &assignments)
		if len(assignments) != 1 || assignments[0].ID != a1.ID {
			t.Errorf("assignments = %+v; want only %s", assignments, a1.ID)
		}
	})

	t.Run("teacher cannot spy on others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments?teacher="+other.ID, getToken(t, mine, false))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusForbidden)
		checkErrBody(t, rec, errForbidden)
	})

	t.Run("students see nothing", func(t *testing.T) {
		token, err := GenerateToken(&Claims{IsStudent: true})
		if err != nil {
			t.Fatalf("GenerateToken(): %v", err)
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusForbidden)
		checkErrBody(t, rec, errForbidden)
	})

	t.Run("admin filters freely", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments?teacher="+other.ID, getToken(t, mine, true))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var assignments []school.Assignment
		decodeBody(t, rec, &assignments)
		if len(assignments) != 1 || assignments[0].TeacherID != other.ID {
			t.Errorf("assignments = %+v; want only %s's", assignments, other.ID)
		}
	})
}

func TestSubstitutesEndpoint(t *testing.T) {
	owner := testutil.CreateTeacher(schoolRepo, "sub-owner")
	helper := testutil.CreateTeacher(schoolRepo, "sub-helper")
	section := testutil.CreateSection(schoolRepo, "SUB", 2, "A")
	algo := testutil.CreateSubject(schoolRepo, "SUB201", "Substitution")
	maths := testutil.CreateSubject(schoolRepo, "SUB202", "Mathematics")

	a := testutil.CreateAssignment(schoolRepo, owner, section, algo, "2025-2026", 2)
	testutil.CreateAssignment(schoolRepo, helper, section, maths, "2025-2026", 2)
	slot := testutil.CreateSlot(schoolRepo, a, time.Thursday, "2")

	t.Run("buckets", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/slots/"+slot.ID+"/substitutes", getToken(t, owner, false))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var opts school.SubstituteOptions
		decodeBody(t, rec, &opts)
		if len(opts.Available) != 1 || opts.Available[0].Teacher.ID != helper.ID {
			t.Errorf("Available = %+v; want only %s", opts.Available, helper.ID)
		}
	})

	t.Run("unknown slot", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/slots/nope/substitutes", getToken(t, owner, false))
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})

	t.Run("students denied", func(t *testing.T) {
		token, err := GenerateToken(&Claims{IsStudent: true})
		if err != nil {
			t.Fatalf("GenerateToken(): %v", err)
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/slots/"+slot.ID+"/substitutes", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusForbidden)
	})
}
