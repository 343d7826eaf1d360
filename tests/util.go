package testutil

import (
	"fmt"
	"time"

	"github.com/trezcool/shule/core/school"
)

// SchoolSeeder is the seeding surface of the in-mem school repository.
type SchoolSeeder interface {
	AddTeacher(school.Teacher) school.Teacher
	AddStudent(school.Student) school.Student
	AddSubject(school.Subject) school.Subject
	AddSection(school.ClassSection) school.ClassSection
	AddAssignment(school.Assignment) school.Assignment
	AddSlot(school.ScheduledSlot) school.ScheduledSlot
	AddEnrollment(school.Enrollment) school.Enrollment
}

func CreateTeacher(repo SchoolSeeder, name string) school.Teacher {
	return repo.AddTeacher(school.Teacher{
		Name:  name,
		Email: fmt.Sprintf("%s@shule.test", name),
	})
}

func CreateSection(repo SchoolSeeder, dept string, semester int, label string) school.ClassSection {
	return repo.AddSection(school.ClassSection{Department: dept, Semester: semester, Label: label})
}

func CreateSubject(repo SchoolSeeder, code, name string) school.Subject {
	return repo.AddSubject(school.Subject{Code: code, Name: name})
}

func CreateStudent(repo SchoolSeeder, name string, section school.ClassSection) school.Student {
	return repo.AddStudent(school.Student{Name: name, SectionID: section.ID})
}

func CreateAssignment(
	repo SchoolSeeder,
	teacher school.Teacher,
	section school.ClassSection,
	subject school.Subject,
	year string,
	semester int,
) school.Assignment {
	return repo.AddAssignment(school.Assignment{
		TeacherID:    teacher.ID,
		SectionID:    section.ID,
		SubjectID:    subject.ID,
		AcademicYear: year,
		Semester:     semester,
		Teacher:      teacher,
		Section:      section,
		Subject:      subject,
	})
}

func CreateSlot(repo SchoolSeeder, a school.Assignment, day time.Weekday, period string) school.ScheduledSlot {
	return repo.AddSlot(school.ScheduledSlot{
		AssignmentID: a.ID,
		Day:          day,
		Period:       period,
		Assignment:   a,
	})
}

func Enroll(repo SchoolSeeder, student school.Student, subject school.Subject) school.Enrollment {
	return repo.AddEnrollment(school.Enrollment{StudentID: student.ID, SubjectID: subject.ID})
}
