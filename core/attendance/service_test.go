package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/school"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

type attendanceFixture struct {
	svc        *attendance.Service
	repo       attendance.Repository
	assignment school.Assignment
	students   []school.Student // s3 not enrolled for the subject
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)
	schoolRepo := dummydb.NewSchoolRepository(db)
	attRepo := dummydb.NewAttendanceRepository(db)
	svc := attendance.NewService(db, attRepo, schoolRepo)

	teacher := testutil.CreateTeacher(schoolRepo, "jane")
	section := testutil.CreateSection(schoolRepo, "CS", 2, "A")
	subject := testutil.CreateSubject(schoolRepo, "CS201", "Algorithms")
	assignment := testutil.CreateAssignment(schoolRepo, teacher, section, subject, "2025-2026", 2)

	students := []school.Student{
		testutil.CreateStudent(schoolRepo, "s1", section),
		testutil.CreateStudent(schoolRepo, "s2", section),
		testutil.CreateStudent(schoolRepo, "s3", section),
		testutil.CreateStudent(schoolRepo, "s4", section),
	}
	for i, stud := range students {
		if i == 2 {
			continue // s3 never registered for the subject
		}
		testutil.Enroll(schoolRepo, stud, subject)
	}

	return &attendanceFixture{svc: svc, repo: attRepo, assignment: assignment, students: students}
}

func TestCreateSession(t *testing.T) {
	fix := newAttendanceFixture(t)
	ctx := context.Background()

	sess, created, err := fix.svc.CreateSession(ctx, attendance.NewSession{
		AssignmentID: fix.assignment.ID,
		Date:         "2026-01-12",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, attendance.StatusUnmarked, sess.Status)
	assert.True(t, sess.NeedsConfirmation())
	assert.Equal(t, time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC), sess.Date)

	// same (assignment, date) is a no-op success
	again, created, err := fix.svc.CreateSession(ctx, attendance.NewSession{
		AssignmentID: fix.assignment.ID,
		Date:         "2026-01-12",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sess.ID, again.ID)

	// a different date is a new session
	_, created, err = fix.svc.CreateSession(ctx, attendance.NewSession{
		AssignmentID: fix.assignment.ID,
		Date:         "2026-01-13",
	})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCreateSessionValidation(t *testing.T) {
	fix := newAttendanceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ns   attendance.NewSession
		want error
	}{
		{name: "malformed date", ns: attendance.NewSession{AssignmentID: fix.assignment.ID, Date: "12/01/2026"}},
		{name: "missing date", ns: attendance.NewSession{AssignmentID: fix.assignment.ID}},
		{name: "unknown assignment", ns: attendance.NewSession{AssignmentID: "nope", Date: "2026-01-12"}, want: school.ErrAssignmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := fix.svc.CreateSession(ctx, tt.ns)
			require.Error(t, err)
			if tt.want != nil {
				assert.Equal(t, tt.want, err)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	fix := newAttendanceFixture(t)
	ctx := context.Background()
	s1, s2, s3 := fix.students[0], fix.students[1], fix.students[2]

	sess, _, err := fix.svc.CreateSession(ctx, attendance.NewSession{AssignmentID: fix.assignment.ID, Date: "2026-01-12"})
	require.NoError(t, err)

	res, err := fix.svc.Confirm(ctx, sess.ID, attendance.ConfirmSession{Entries: map[string]bool{
		s1.ID: true,
		s2.ID: false,
		s3.ID: true, // not enrolled: skipped, not failed
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, []string{s3.ID}, res.Skipped)
	assert.Equal(t, attendance.StatusMarked, res.Session.Status)
	assert.False(t, res.Session.NeedsConfirmation())

	// s4 was never submitted: untouched, not defaulted to absent
	_, recs, err := fix.svc.SessionRecords(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	byStudent := make(map[string]bool, len(recs))
	for _, rec := range recs {
		byStudent[rec.StudentID] = rec.Present
	}
	assert.Equal(t, map[string]bool{s1.ID: true, s2.ID: false}, byStudent)
}

func TestConfirmIsIdempotentForCorrections(t *testing.T) {
	fix := newAttendanceFixture(t)
	ctx := context.Background()
	s1, s2 := fix.students[0], fix.students[1]

	sess, _, err := fix.svc.CreateSession(ctx, attendance.NewSession{AssignmentID: fix.assignment.ID, Date: "2026-01-12"})
	require.NoError(t, err)

	entries := map[string]bool{s1.ID: true, s2.ID: false}
	_, err = fix.svc.Confirm(ctx, sess.ID, attendance.ConfirmSession{Entries: entries})
	require.NoError(t, err)

	// re-confirming a Marked session corrects in place, never duplicates
	entries[s2.ID] = true
	res, err := fix.svc.Confirm(ctx, sess.ID, attendance.ConfirmSession{Entries: entries})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)

	_, recs, err := fix.svc.SessionRecords(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.True(t, rec.Present)
	}
}

func TestConfirmValidation(t *testing.T) {
	fix := newAttendanceFixture(t)
	ctx := context.Background()

	sess, _, err := fix.svc.CreateSession(ctx, attendance.NewSession{AssignmentID: fix.assignment.ID, Date: "2026-01-12"})
	require.NoError(t, err)

	_, err = fix.svc.Confirm(ctx, sess.ID, attendance.ConfirmSession{})
	require.Error(t, err)

	_, err = fix.svc.Confirm(ctx, "nope", attendance.ConfirmSession{Entries: map[string]bool{"x": true}})
	assert.Equal(t, attendance.ErrSessionNotFound, err)
}

func TestSessionStatistics(t *testing.T) {
	fix := newAttendanceFixture(t)
	ctx := context.Background()
	s1, s2, s4 := fix.students[0], fix.students[1], fix.students[3]

	sess, _, err := fix.svc.CreateSession(ctx, attendance.NewSession{AssignmentID: fix.assignment.ID, Date: "2026-01-12"})
	require.NoError(t, err)

	// 2 present out of 3: 66.666...% rounds to one decimal
	_, err = fix.svc.Confirm(ctx, sess.ID, attendance.ConfirmSession{Entries: map[string]bool{
		s1.ID: true, s2.ID: true, s4.ID: false,
	}})
	require.NoError(t, err)

	stats, err := fix.svc.SessionStatistics(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.Statistics{Total: 3, Present: 2, Absent: 1, Percentage: 66.7}, stats)
}

func TestComputeStatisticsEmpty(t *testing.T) {
	// no records: all zeroes, no division by zero
	assert.Equal(t, attendance.Statistics{}, attendance.ComputeStatistics(nil))
}
