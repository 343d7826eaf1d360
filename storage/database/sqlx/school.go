package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	exec core.DBExecutor
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{exec: exec}
}

func (repo schoolRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type (
	assignmentRow struct {
		ID           string `db:"id"`
		TeacherID    string `db:"teacher_id"`
		SectionID    string `db:"section_id"`
		SubjectID    string `db:"subject_id"`
		AcademicYear string `db:"academic_year"`
		Semester     int    `db:"semester"`

		TeacherName  string `db:"teacher_name"`
		TeacherEmail string `db:"teacher_email"`
		Department   string `db:"department"`
		SectionSem   int    `db:"section_semester"`
		SectionLabel string `db:"section_label"`
		SubjectCode  string `db:"subject_code"`
		SubjectName  string `db:"subject_name"`
	}

	slotRow struct {
		ID     string      `db:"slot_id"`
		Day    int         `db:"day"`
		Period string      `db:"period"`
		Room   null.String `db:"room"`
		assignmentRow
	}
)

const assignmentSelect = `
	SELECT a.id, a.teacher_id, a.section_id, a.subject_id, a.academic_year, a.semester,
	       t.name AS teacher_name, t.email AS teacher_email,
	       cs.department, cs.semester AS section_semester, cs.label AS section_label,
	       sub.code AS subject_code, sub.name AS subject_name
	FROM assignment a
	JOIN teacher t ON t.id = a.teacher_id
	JOIN class_section cs ON cs.id = a.section_id
	JOIN subject sub ON sub.id = a.subject_id`

const slotSelect = `
	SELECT sl.id AS slot_id, sl.day, sl.period, sl.room,
	       a.id, a.teacher_id, a.section_id, a.subject_id, a.academic_year, a.semester,
	       t.name AS teacher_name, t.email AS teacher_email,
	       cs.department, cs.semester AS section_semester, cs.label AS section_label,
	       sub.code AS subject_code, sub.name AS subject_name
	FROM scheduled_slot sl
	JOIN assignment a ON a.id = sl.assignment_id
	JOIN teacher t ON t.id = a.teacher_id
	JOIN class_section cs ON cs.id = a.section_id
	JOIN subject sub ON sub.id = a.subject_id`

func (row assignmentRow) assignment() school.Assignment {
	return school.Assignment{
		ID:           row.ID,
		TeacherID:    row.TeacherID,
		SectionID:    row.SectionID,
		SubjectID:    row.SubjectID,
		AcademicYear: row.AcademicYear,
		Semester:     row.Semester,
		Teacher:      school.Teacher{ID: row.TeacherID, Name: row.TeacherName, Email: row.TeacherEmail},
		Section:      school.ClassSection{ID: row.SectionID, Department: row.Department, Semester: row.SectionSem, Label: row.SectionLabel},
		Subject:      school.Subject{ID: row.SubjectID, Code: row.SubjectCode, Name: row.SubjectName},
	}
}

func (row slotRow) slot() school.ScheduledSlot {
	return school.ScheduledSlot{
		ID:           row.ID,
		AssignmentID: row.assignmentRow.ID,
		Day:          time.Weekday(row.Day),
		Period:       row.Period,
		Room:         row.Room,
		Assignment:   row.assignment(),
	}
}

// trapNoRowsErr maps psql "no rows" err to the domain's not-found error
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo schoolRepository) GetTeacherByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.Teacher, error) {
	var t school.Teacher
	err := repo.getExec(exec).GetContext(ctx, &t, "SELECT id, name, email FROM teacher WHERE id = $1", id)
	if err != nil {
		return school.Teacher{}, trapNoRowsErr(err, school.ErrTeacherNotFound, "finding teacher by ID")
	}
	return t, nil
}

func (repo schoolRepository) GetSectionByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.ClassSection, error) {
	var s school.ClassSection
	err := repo.getExec(exec).GetContext(ctx, &s, "SELECT id, department, semester, label FROM class_section WHERE id = $1", id)
	if err != nil {
		return school.ClassSection{}, trapNoRowsErr(err, school.ErrSectionNotFound, "finding class section by ID")
	}
	return s, nil
}

func (repo schoolRepository) GetAssignmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.Assignment, error) {
	var row assignmentRow
	err := repo.getExec(exec).GetContext(ctx, &row, assignmentSelect+" WHERE a.id = $1", id)
	if err != nil {
		return school.Assignment{}, trapNoRowsErr(err, school.ErrAssignmentNotFound, "finding assignment by ID")
	}
	return row.assignment(), nil
}

func (repo schoolRepository) GetSlotByID(ctx context.Context, id string, exec ...core.DBExecutor) (school.ScheduledSlot, error) {
	var row slotRow
	err := repo.getExec(exec).GetContext(ctx, &row, slotSelect+" WHERE sl.id = $1", id)
	if err != nil {
		return school.ScheduledSlot{}, trapNoRowsErr(err, school.ErrSlotNotFound, "finding slot by ID")
	}
	return row.slot(), nil
}

func (repo schoolRepository) GetEnrollment(ctx context.Context, studentID, subjectID string, exec ...core.DBExecutor) (school.Enrollment, error) {
	var e school.Enrollment
	err := repo.getExec(exec).GetContext(ctx, &e,
		"SELECT id, student_id, subject_id FROM enrollment WHERE student_id = $1 AND subject_id = $2", studentID, subjectID)
	if err != nil {
		return school.Enrollment{}, trapNoRowsErr(err, school.ErrEnrollmentNotFound, "finding enrollment")
	}
	return e, nil
}

func (repo schoolRepository) QueryAssignments(ctx context.Context, filter *school.AssignmentFilter, exec ...core.DBExecutor) ([]school.Assignment, error) {
	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	if filter != nil {
		if filter.TeacherID != "" {
			args = append(args, filter.TeacherID)
			where = append(where, fmt.Sprintf("a.teacher_id = $%d", len(args)))
		}
		if filter.SectionID != "" {
			args = append(args, filter.SectionID)
			where = append(where, fmt.Sprintf("a.section_id = $%d", len(args)))
		}
		if filter.SubjectID != "" {
			args = append(args, filter.SubjectID)
			where = append(where, fmt.Sprintf("a.subject_id = $%d", len(args)))
		}
		if filter.AcademicYear != "" {
			args = append(args, "%"+filter.AcademicYear+"%")
			where = append(where, fmt.Sprintf("a.academic_year LIKE $%d", len(args)))
		}
		if filter.Semester != 0 {
			args = append(args, filter.Semester)
			where = append(where, fmt.Sprintf("a.semester = $%d", len(args)))
		}
	}

	query := assignmentSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.academic_year, a.semester, sub.code"

	var rows []assignmentRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]school.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.assignment())
	}
	return assignments, nil
}

func (repo schoolRepository) slotWhere(filter *school.SlotFilter) ([]string, []interface{}) {
	where := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)

	if filter == nil {
		return where, args
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		where = append(where, fmt.Sprintf("a.teacher_id = $%d", len(args)))
	}
	if filter.SectionID != "" {
		args = append(args, filter.SectionID)
		where = append(where, fmt.Sprintf("a.section_id = $%d", len(args)))
	}
	if filter.AcademicYear != "" {
		args = append(args, "%"+filter.AcademicYear+"%")
		where = append(where, fmt.Sprintf("a.academic_year LIKE $%d", len(args)))
	}
	if filter.Semester != 0 {
		args = append(args, filter.Semester)
		where = append(where, fmt.Sprintf("a.semester = $%d", len(args)))
	}
	if filter.Day != nil {
		args = append(args, int(*filter.Day))
		where = append(where, fmt.Sprintf("sl.day = $%d", len(args)))
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		where = append(where, fmt.Sprintf("sl.period = $%d", len(args)))
	}
	return where, args
}

func (repo schoolRepository) QuerySlots(ctx context.Context, filter *school.SlotFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]school.ScheduledSlot, error) {
	where, args := repo.slotWhere(filter)

	query := slotSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	} else {
		query += " ORDER BY sl.day, sl.period"
	}

	var rows []slotRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying slots")
	}
	slots := make([]school.ScheduledSlot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, row.slot())
	}
	return slots, nil
}

func (repo schoolRepository) QueryStudentsBySection(ctx context.Context, sectionID string, exec ...core.DBExecutor) ([]school.Student, error) {
	var students []school.Student
	err := repo.getExec(exec).SelectContext(ctx, &students,
		"SELECT id, name, section_id FROM student WHERE section_id = $1 ORDER BY name", sectionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying section roster")
	}
	return students, nil
}

func (repo schoolRepository) QueryEnrolledStudentIDs(ctx context.Context, subjectID string, studentIDs []string, exec ...core.DBExecutor) (map[string]school.Enrollment, error) {
	if len(studentIDs) == 0 {
		return map[string]school.Enrollment{}, nil
	}

	exe := repo.getExec(exec)
	query, args, err := sqlx.In(
		"SELECT id, student_id, subject_id FROM enrollment WHERE subject_id = ? AND student_id IN (?)",
		subjectID, studentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building enrollment query")
	}

	var enrollments []school.Enrollment
	if err = exe.SelectContext(ctx, &enrollments, exe.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrolled := make(map[string]school.Enrollment, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.StudentID] = e
	}
	return enrolled, nil
}

func (repo schoolRepository) QueryAcademicYears(ctx context.Context, filter *school.SlotFilter, exec ...core.DBExecutor) ([]string, error) {
	where, args := repo.slotWhere(filter)

	query := "SELECT DISTINCT a.academic_year FROM scheduled_slot sl JOIN assignment a ON a.id = sl.assignment_id"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.academic_year"

	var years []string
	if err := repo.getExec(exec).SelectContext(ctx, &years, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying academic years")
	}
	return years, nil
}
