package school

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// TeacherOption is one possible substitute for a slot.
	TeacherOption struct {
		Teacher      Teacher `json:"teacher"`
		KnowsSubject bool    `json:"knows_subject"`
	}

	// SubstituteOptions partitions the section's teachers for one slot:
	// Qualified are free at the slot's (day, period) and have an
	// assignment for its subject; Available are free but have never been
	// assigned the subject. Busy teachers appear in neither bucket.
	// An empty Qualified bucket is a reportable empty result, not an
	// error; Available is still returned for visibility.
	SubstituteOptions struct {
		Slot      ScheduledSlot   `json:"slot"`
		Qualified []TeacherOption `json:"qualified"`
		Available []TeacherOption `json:"available"`
	}
)

// FindSubstitutes searches all teachers with at least one assignment in
// the slot's class section for ones free at its (day, period), flagging
// whether they know the subject.
func (svc *Service) FindSubstitutes(ctx context.Context, slotID string) (SubstituteOptions, error) {
	slot, err := svc.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return SubstituteOptions{}, err
	}

	sectionAssignments, err := svc.repo.QueryAssignments(ctx, &AssignmentFilter{SectionID: slot.Assignment.SectionID})
	if err != nil {
		return SubstituteOptions{}, errors.Wrap(err, "querying section assignments")
	}
	subjectAssignments, err := svc.repo.QueryAssignments(ctx, &AssignmentFilter{SubjectID: slot.Assignment.SubjectID})
	if err != nil {
		return SubstituteOptions{}, errors.Wrap(err, "querying subject assignments")
	}
	day := slot.Day
	busySlots, err := svc.repo.QuerySlots(ctx, &SlotFilter{Day: &day, Period: slot.Period}, nil)
	if err != nil {
		return SubstituteOptions{}, errors.Wrap(err, "querying busy slots")
	}

	knowsSubject := make(map[string]bool, len(subjectAssignments))
	for _, a := range subjectAssignments {
		knowsSubject[a.TeacherID] = true
	}
	busy := make(map[string]bool, len(busySlots))
	for _, s := range busySlots {
		busy[s.Assignment.TeacherID] = true
	}

	opts := SubstituteOptions{Slot: slot}
	seen := make(map[string]bool, len(sectionAssignments))
	for _, a := range sectionAssignments {
		tid := a.TeacherID
		if tid == slot.Assignment.TeacherID || seen[tid] || busy[tid] {
			continue
		}
		seen[tid] = true

		opt := TeacherOption{Teacher: a.Teacher, KnowsSubject: knowsSubject[tid]}
		if opt.KnowsSubject {
			opts.Qualified = append(opts.Qualified, opt)
		} else {
			opts.Available = append(opts.Available, opt)
		}
	}
	return opts, nil
}
