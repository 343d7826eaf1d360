package tests

import (
	"log"
	"os"
	"testing"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assessment"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/school"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

// schoolRepo combines the repository contract with the in-mem seeding
// surface so tests can both serve and arrange data.
type schoolRepoIface interface {
	school.Repository
	testutil.SchoolSeeder
}

var (
	app        Server
	schoolRepo schoolRepoIface
	attRepo    attendance.Repository
	assRepo    assessment.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	// error bodies assert the production (non-debug) rendering
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := dummydb.Open()
	if err != nil {
		log.Fatalf("opening dummy db: %v", err)
	}
	repo := dummydb.NewSchoolRepository(db)
	schoolRepo = repo
	attRepo = dummydb.NewAttendanceRepository(db)
	assRepo = dummydb.NewAssessmentRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	schoolSvc := school.NewService(db, schoolRepo)
	attSvc := attendance.NewService(db, attRepo, schoolRepo)
	assSvc := assessment.NewService(db, assRepo, schoolRepo, attRepo, mailSvc)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", 0), core.Conf)
	logger.Enable(false)

	app = NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		SchoolSvc:      schoolSvc,
		AttendanceSvc:  attSvc,
		AssessmentSvc:  assSvc,
	})

	os.Exit(m.Run())
}
