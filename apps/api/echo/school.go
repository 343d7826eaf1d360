package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

type schoolApi struct {
	svc *school.Service
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service) {
	api := schoolApi{svc: svc}

	ag := g.Group("", jwt)
	ag.GET("/timetable", api.timetable)
	ag.GET("/assignments", api.queryAssignments)
	ag.GET("/slots/:id/substitutes", api.findSubstitutes, teacherOrAdminMiddleware())
}

// timetableRequest carries the week selection query params. Dates use
// the configured institutional date format.
type timetableRequest struct {
	TeacherID    string `query:"teacher"`
	SectionID    string `query:"section"`
	Date         string `query:"date"` // week anchor; defaults to today
	AcademicYear string `query:"year"`
	Semester     int    `query:"semester"`
	From         string `query:"from"`
	To           string `query:"to"`
}

func (r timetableRequest) parseDate(name, val string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(core.Conf.School.DateFormat, val, time.UTC)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: name, Error: "malformed date"})
	}
	return &d, nil
}

func (api *schoolApi) timetable(ctx echo.Context) error {
	var data timetableRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to timetableRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// teachers land on their own timetable unless a section is asked for
	if data.TeacherID == "" && data.SectionID == "" && claims.IsTeacher {
		data.TeacherID = claims.TeacherID
	}

	req := school.TimetableRequest{
		TeacherID:    core.CleanString(data.TeacherID),
		SectionID:    core.CleanString(data.SectionID),
		AcademicYear: core.CleanString(data.AcademicYear),
		Semester:     data.Semester,
	}
	if anchor, err := data.parseDate("date", data.Date); err != nil {
		return err
	} else if anchor != nil {
		req.Anchor = *anchor
	}
	if req.From, err = data.parseDate("from", data.From); err != nil {
		return err
	}
	if req.To, err = data.parseDate("to", data.To); err != nil {
		return err
	}

	tt, err := api.svc.Timetable(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "materializing timetable")
	}
	return ctx.JSON(http.StatusOK, tt)
}

func (api *schoolApi) queryAssignments(ctx echo.Context) error {
	var filter school.AssignmentFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to AssignmentFilter")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// non-admins only see their own assignments; tokens without a
	// teacher identity (student portal) see none at all
	if !claims.IsAdmin {
		if claims.TeacherID == "" {
			return errHttpForbidden
		}
		if filter.TeacherID != "" && filter.TeacherID != claims.TeacherID {
			return errHttpForbidden
		}
		filter.TeacherID = claims.TeacherID
	}

	assignments, err := api.svc.FilterAssignments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *schoolApi) findSubstitutes(ctx echo.Context) error {
	opts, err := api.svc.FindSubstitutes(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, opts)
}
