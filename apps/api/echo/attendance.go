package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/school"
)

type attendanceApi struct {
	svc       *attendance.Service
	schoolSvc *school.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, schoolSvc *school.Service) {
	api := attendanceApi{svc: svc, schoolSvc: schoolSvc}

	ag := g.Group("/attendance/sessions", jwt, teacherOrAdminMiddleware())
	ag.POST("", api.createSession)
	ag.GET("", api.querySessions)
	ag.GET("/:id", api.retrieveSession)
	ag.PUT("/:id/confirm", api.confirmSession)
	ag.GET("/:id/statistics", api.sessionStatistics)
}

// checkAssignmentAccess loads the assignment and enforces the
// own-assignment rule for teachers.
func (api *attendanceApi) checkAssignmentAccess(ctx echo.Context, assignmentID string) error {
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

func (api *attendanceApi) checkSessionAccess(ctx echo.Context, sessionID string) (attendance.Session, error) {
	sess, err := api.svc.GetSession(ctx.Request().Context(), sessionID)
	if err != nil {
		return attendance.Session{}, err
	}
	return sess, api.checkAssignmentAccess(ctx, sess.AssignmentID)
}

func (api *attendanceApi) createSession(ctx echo.Context) error {
	var data attendance.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if data.AssignmentID != "" {
		if err := api.checkAssignmentAccess(ctx, core.CleanString(data.AssignmentID)); err != nil {
			return err
		}
	}

	sess, created, err := api.svc.CreateSession(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	// an existing session is a no-op success, not a conflict
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, sess)
}

func (api *attendanceApi) querySessions(ctx echo.Context) error {
	assignmentID := core.CleanString(ctx.QueryParam("assignment"))
	if assignmentID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "assignment", Error: "this field is required"})
	}
	if err := api.checkAssignmentAccess(ctx, assignmentID); err != nil {
		return err
	}

	sessions, err := api.svc.QueryByAssignment(ctx.Request().Context(), assignmentID)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

type sessionDetailResponse struct {
	Session attendance.Session  `json:"session"`
	Records []attendance.Record `json:"records"`
}

func (api *attendanceApi) retrieveSession(ctx echo.Context) error {
	if _, err := api.checkSessionAccess(ctx, ctx.Param("id")); err != nil {
		return err
	}
	sess, recs, err := api.svc.SessionRecords(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessionDetailResponse{Session: sess, Records: recs})
}

func (api *attendanceApi) confirmSession(ctx echo.Context) error {
	if _, err := api.checkSessionAccess(ctx, ctx.Param("id")); err != nil {
		return err
	}

	var data attendance.ConfirmSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmSession")
	}
	res, err := api.svc.Confirm(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) sessionStatistics(ctx echo.Context) error {
	if _, err := api.checkSessionAccess(ctx, ctx.Param("id")); err != nil {
		return err
	}
	stats, err := api.svc.SessionStatistics(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}
