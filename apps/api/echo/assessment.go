package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/assessment"
	"github.com/trezcool/shule/core/school"
)

type assessmentApi struct {
	svc       *assessment.Service
	schoolSvc *school.Service
}

func registerAssessmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assessment.Service, schoolSvc *school.Service) {
	api := assessmentApi{svc: svc, schoolSvc: schoolSvc}

	ag := g.Group("/assessment", jwt, teacherOrAdminMiddleware())
	ag.POST("/marks", api.recordMarks)
	ag.GET("/report", api.report)
}

func (api *assessmentApi) checkAssignmentAccess(ctx echo.Context, assignmentID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	assignment, err := api.schoolSvc.GetAssignment(ctx.Request().Context(), assignmentID)
	if err != nil {
		return err
	}
	if !canManageAssignment(claims, assignment) {
		return errHttpForbidden
	}
	return nil
}

func (api *assessmentApi) recordMarks(ctx echo.Context) error {
	var data assessment.NewMarks
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMarks")
	}
	if data.AssignmentID != "" {
		if err := api.checkAssignmentAccess(ctx, core.CleanString(data.AssignmentID)); err != nil {
			return err
		}
	}

	res, err := api.svc.RecordMarks(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assessmentApi) report(ctx echo.Context) error {
	assignmentID := core.CleanString(ctx.QueryParam("assignment"))
	if assignmentID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "assignment", Error: "this field is required"})
	}
	if err := api.checkAssignmentAccess(ctx, assignmentID); err != nil {
		return err
	}

	report, err := api.svc.Report(ctx.Request().Context(), assignmentID)
	if err != nil {
		return err
	}

	// optionally email the summary to the assignment's teacher.
	// delivery is best-effort: messages are sent asynchronously, so a
	// render or transport failure after this point does not fail the
	// request (only the teacher lookup can).
	if notify, _ := strconv.ParseBool(ctx.QueryParam("notify")); notify {
		if err := api.svc.NotifyTeacher(ctx.Request().Context(), report); err != nil {
			return errors.Wrap(err, "notifying teacher")
		}
	}
	return ctx.JSON(http.StatusOK, report)
}
