package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/school"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func TestFindSubstitutes(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewSchoolRepository(db)
	svc := school.NewService(db, repo)

	owner := testutil.CreateTeacher(repo, "owner")
	qualified := testutil.CreateTeacher(repo, "qualified")
	busy := testutil.CreateTeacher(repo, "busy")
	available := testutil.CreateTeacher(repo, "available")
	outsider := testutil.CreateTeacher(repo, "outsider")

	section := testutil.CreateSection(repo, "CS", 2, "A")
	otherSection := testutil.CreateSection(repo, "CS", 2, "B")
	algo := testutil.CreateSubject(repo, "CS201", "Algorithms")
	maths := testutil.CreateSubject(repo, "MA201", "Linear Algebra")

	year, sem := "2025-2026", 2

	// the slot to cover: owner teaching algo on Monday period 1
	ownerAssignment := testutil.CreateAssignment(repo, owner, section, algo, year, sem)
	slot := testutil.CreateSlot(repo, ownerAssignment, time.Monday, "1")

	// qualified: teaches in the section and algo elsewhere, free Mon/1
	testutil.CreateAssignment(repo, qualified, section, maths, year, sem)
	testutil.CreateAssignment(repo, qualified, otherSection, algo, year, sem)

	// busy: teaches in the section but occupied at Mon/1
	busyAssignment := testutil.CreateAssignment(repo, busy, section, maths, year, sem)
	testutil.CreateSlot(repo, busyAssignment, time.Monday, "1")

	// available: teaches in the section, free, but never assigned algo
	testutil.CreateAssignment(repo, available, section, maths, year, sem)

	// outsider: teaches algo but has no assignment in the section
	testutil.CreateAssignment(repo, outsider, otherSection, algo, year, sem)

	opts, err := svc.FindSubstitutes(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.ID, opts.Slot.ID)

	require.Len(t, opts.Qualified, 1)
	assert.Equal(t, qualified.ID, opts.Qualified[0].Teacher.ID)
	assert.True(t, opts.Qualified[0].KnowsSubject)

	require.Len(t, opts.Available, 1)
	assert.Equal(t, available.ID, opts.Available[0].Teacher.ID)
	assert.False(t, opts.Available[0].KnowsSubject)
}

func TestFindSubstitutesEmptyBuckets(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewSchoolRepository(db)
	svc := school.NewService(db, repo)

	owner := testutil.CreateTeacher(repo, "solo")
	section := testutil.CreateSection(repo, "CS", 2, "A")
	algo := testutil.CreateSubject(repo, "CS201", "Algorithms")
	a := testutil.CreateAssignment(repo, owner, section, algo, "2025-2026", 2)
	slot := testutil.CreateSlot(repo, a, time.Tuesday, "4")

	// nobody else teaches the section: an empty result, not an error
	opts, err := svc.FindSubstitutes(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Empty(t, opts.Qualified)
	assert.Empty(t, opts.Available)
}

func TestFindSubstitutesSlotNotFound(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	svc := school.NewService(db, dummydb.NewSchoolRepository(db))

	_, err = svc.FindSubstitutes(context.Background(), "nope")
	assert.Equal(t, school.ErrSlotNotFound, err)
}
