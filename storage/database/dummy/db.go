package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assessment"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/school"
)

type (
	DB struct {
		noopExecutor

		school     *schoolTables
		attendance *attendanceTables
		assessment *assessmentTables
	}

	schoolTables struct {
		sync.RWMutex
		teachers    map[string]*school.Teacher
		students    map[string]*school.Student
		subjects    map[string]*school.Subject
		sections    map[string]*school.ClassSection
		assignments map[string]*school.Assignment
		slots       map[string]*school.ScheduledSlot
		enrollments map[string]*school.Enrollment
	}

	attendanceTables struct {
		sync.RWMutex
		sessions map[string]*attendance.Session
		records  map[string]*attendance.Record
	}

	assessmentTables struct {
		sync.RWMutex
		exams map[string]*assessment.ExamSession
		marks map[string]*assessment.Mark
	}
)

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	db := &DB{
		school: &schoolTables{
			teachers:    make(map[string]*school.Teacher),
			students:    make(map[string]*school.Student),
			subjects:    make(map[string]*school.Subject),
			sections:    make(map[string]*school.ClassSection),
			assignments: make(map[string]*school.Assignment),
			slots:       make(map[string]*school.ScheduledSlot),
			enrollments: make(map[string]*school.Enrollment),
		},
		attendance: &attendanceTables{
			sessions: make(map[string]*attendance.Session),
			records:  make(map[string]*attendance.Record),
		},
		assessment: &assessmentTables{
			exams: make(map[string]*assessment.ExamSession),
			marks: make(map[string]*assessment.Mark),
		},
	}
	return db, nil
}

func (db *DB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return &noopTransactor{}, nil
}

func (db *DB) Close() error { return nil }

// noopExecutor satisfies core.DBExecutor for repositories that operate on
// in-memory tables and never touch SQL.
type noopExecutor struct{}

func (noopExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (noopExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (noopExecutor) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, nil
}
func (noopExecutor) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}
func (noopExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (noopExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (noopExecutor) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	return nil, nil
}
func (noopExecutor) DriverName() string { return "dummy" }
func (noopExecutor) Rebind(query string) string {
	return query
}
func (noopExecutor) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return query, nil, nil
}

type noopTransactor struct {
	noopExecutor
}

func (noopTransactor) Commit() error   { return nil }
func (noopTransactor) Rollback() error { return nil }
