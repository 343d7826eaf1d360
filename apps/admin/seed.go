package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

// seed loads a small demo school: one section with its roster, three
// subjects and teachers, the term's assignments and their weekly slots.
// Safe to re-run; existing rows are matched by their natural keys.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	var count int
	if err := cli.db.GetContext(ctx, &count, "SELECT count(*) FROM student"); err != nil {
		return errors.Wrap(err, "checking for existing roster")
	}
	if count > 0 {
		logger.Println("database already seeded; nothing to do")
		return nil
	}

	now := time.Now()
	year := core.AcademicYear(core.DetermineAcademicYearStart(now))
	semester := core.DetermineSemester(now)

	teachers := map[string]string{ // email: name
		"jane.mwangi@shule.test":  "Jane Mwangi",
		"paul.otieno@shule.test":  "Paul Otieno",
		"amina.hassan@shule.test": "Amina Hassan",
	}
	teacherIDs := make(map[string]string, len(teachers))
	for email, name := range teachers {
		var id string
		err := cli.db.GetContext(ctx, &id, `
			INSERT INTO teacher (name, email) VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, name, email)
		if err != nil {
			return errors.Wrap(err, "seeding teacher "+email)
		}
		teacherIDs[email] = id
	}

	var sectionID string
	err := cli.db.GetContext(ctx, &sectionID, `
		INSERT INTO class_section (department, semester, label) VALUES ($1, $2, $3)
		ON CONFLICT (department, semester, label) DO UPDATE SET label = EXCLUDED.label
		RETURNING id`, "CS", semester, "A")
	if err != nil {
		return errors.Wrap(err, "seeding class section")
	}

	subjects := map[string]string{ // code: name
		"CS301": "Data Structures",
		"CS302": "Operating Systems",
		"CS303": "Databases",
	}
	subjectIDs := make(map[string]string, len(subjects))
	for code, name := range subjects {
		var id string
		err := cli.db.GetContext(ctx, &id, `
			INSERT INTO subject (code, name) VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, code, name)
		if err != nil {
			return errors.Wrap(err, "seeding subject "+code)
		}
		subjectIDs[code] = id
	}

	studentNames := []string{
		"Brian Kip", "Cynthia Njeri", "David Omondi", "Esther Wanjiru", "Felix Baraka", "Grace Achieng",
	}
	studentIDs := make([]string, 0, len(studentNames))
	for _, name := range studentNames {
		var id string
		err := cli.db.GetContext(ctx, &id,
			"INSERT INTO student (name, section_id) VALUES ($1, $2) RETURNING id", name, sectionID)
		if err != nil {
			return errors.Wrap(err, "seeding student "+name)
		}
		studentIDs = append(studentIDs, id)
	}

	// one teacher per subject for the section
	pairs := []struct{ email, code string }{
		{"jane.mwangi@shule.test", "CS301"},
		{"paul.otieno@shule.test", "CS302"},
		{"amina.hassan@shule.test", "CS303"},
	}
	assignmentIDs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		var id string
		err := cli.db.GetContext(ctx, &id, `
			INSERT INTO assignment (teacher_id, section_id, subject_id, academic_year, semester)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (teacher_id, section_id, subject_id, academic_year, semester)
			DO UPDATE SET semester = EXCLUDED.semester
			RETURNING id`, teacherIDs[p.email], sectionID, subjectIDs[p.code], year, semester)
		if err != nil {
			return errors.Wrap(err, "seeding assignment "+p.code)
		}
		assignmentIDs[p.code] = id
	}

	slots := []struct {
		email, code string
		day         time.Weekday
		period      string
		room        string
	}{
		{"jane.mwangi@shule.test", "CS301", time.Monday, "1", "Lab 2"},
		{"jane.mwangi@shule.test", "CS301", time.Wednesday, "3", "Lab 2"},
		{"paul.otieno@shule.test", "CS302", time.Monday, "2", "Room 14"},
		{"paul.otieno@shule.test", "CS302", time.Thursday, "5", "Room 14"},
		{"amina.hassan@shule.test", "CS303", time.Tuesday, "1", ""},
		{"amina.hassan@shule.test", "CS303", time.Friday, "6", ""},
	}
	for _, s := range slots {
		_, err := cli.db.ExecContext(ctx, `
			INSERT INTO scheduled_slot (assignment_id, teacher_id, day, period, room)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (teacher_id, day, period)
			DO UPDATE SET assignment_id = EXCLUDED.assignment_id, room = EXCLUDED.room`,
			assignmentIDs[s.code], teacherIDs[s.email], int(s.day), s.period, null.NewString(s.room, s.room != ""))
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("seeding slot %s %v/%s", s.code, s.day, s.period))
		}
	}

	// enroll everyone for every subject except the last student for CS303,
	// to demo the skip-on-missing-enrollment path
	for code, subjID := range subjectIDs {
		for i, studID := range studentIDs {
			if code == "CS303" && i == len(studentIDs)-1 {
				continue
			}
			_, err := cli.db.ExecContext(ctx, `
				INSERT INTO enrollment (student_id, subject_id) VALUES ($1, $2)
				ON CONFLICT (student_id, subject_id) DO NOTHING`, studID, subjID)
			if err != nil {
				return errors.Wrap(err, "seeding enrollment")
			}
		}
	}

	logger.Printf("seeded %d teachers, %d students, %d subjects, %d assignments, %d slots\n",
		len(teachers), len(studentIDs), len(subjects), len(assignmentIDs), len(slots))
	return nil
}
