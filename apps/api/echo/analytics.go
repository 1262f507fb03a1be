package echoapi

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/report"
	"github.com/trezcool/rollcall/core/school"
)

const defaultRange = report.RangeMonth

type analyticsApi struct {
	schoolSvc *school.Service
	builder   *report.Builder
}

func registerAnalyticsAPI(g *echo.Group, schoolSvc *school.Service, builder *report.Builder) {
	api := analyticsApi{
		schoolSvc: schoolSvc,
		builder:   builder,
	}

	gg := g.Group("/grades/:grade")
	gg.GET("/subjects", api.subjects)

	sg := gg.Group("/subjects/:subject")
	sg.GET("/students", api.students)
	sg.GET("/analysis", api.analysis)
	sg.GET("/report", api.report)
}

// Handlers

func (api *analyticsApi) subjects(ctx echo.Context) error {
	grade, err := gradeParam(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.schoolSvc.SubjectsForGrade(ctx.Request().Context(), grade)
	if err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *analyticsApi) students(ctx echo.Context) error {
	grade, err := gradeParam(ctx)
	if err != nil {
		return err
	}
	cohort, err := api.schoolSvc.ResolveCohort(ctx.Request().Context(), grade, subjectParam(ctx))
	if err != nil {
		return errors.Wrap(err, "resolving cohort")
	}
	return ctx.JSON(http.StatusOK, cohort.Students)
}

func (api *analyticsApi) analysis(ctx echo.Context) error {
	req, err := bindAnalysisRequest(ctx)
	if err != nil {
		return err
	}
	analysis, err := api.builder.Analyze(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "analyzing attendance")
	}
	return ctx.JSON(http.StatusOK, analysis)
}

func (api *analyticsApi) report(ctx echo.Context) error {
	areq, err := bindAnalysisRequest(ctx)
	if err != nil {
		return err
	}
	req := report.ReportRequest{AnalysisRequest: areq}
	if req.Month, err = intQueryParam(ctx, "month"); err != nil {
		return err
	}
	if req.Year, err = intQueryParam(ctx, "year"); err != nil {
		return err
	}

	rep, err := api.builder.Build(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

// Params

func gradeParam(ctx echo.Context) (int, error) {
	grade, err := strconv.Atoi(ctx.Param("grade"))
	if err != nil || grade < 1 {
		return 0, core.NewValidationError(err, core.FieldError{Field: "grade", Error: "grade must be a positive integer"})
	}
	return grade, nil
}

func subjectParam(ctx echo.Context) string {
	raw := ctx.Param("subject")
	if subject, err := url.PathUnescape(raw); err == nil {
		return subject
	}
	return raw
}

func intQueryParam(ctx echo.Context, name string) (int, error) {
	raw := core.CleanString(ctx.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError(err, core.FieldError{Field: name, Error: "must be an integer"})
	}
	return v, nil
}

func dateQueryParam(ctx echo.Context, name string) (*time.Time, error) {
	raw := core.CleanString(ctx.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: name, Error: name + " must be a date formatted as " + core.DateLayout})
	}
	return &d, nil
}

func bindAnalysisRequest(ctx echo.Context) (report.AnalysisRequest, error) {
	grade, err := gradeParam(ctx)
	if err != nil {
		return report.AnalysisRequest{}, err
	}
	req := report.AnalysisRequest{
		Grade:     grade,
		Subject:   subjectParam(ctx),
		RangeType: report.RangeType(core.CleanString(ctx.QueryParam("range"), true /* lower */)),
	}
	if req.RangeType == "" {
		req.RangeType = defaultRange
	}
	if req.Start, err = dateQueryParam(ctx, "start"); err != nil {
		return report.AnalysisRequest{}, err
	}
	if req.End, err = dateQueryParam(ctx, "end"); err != nil {
		return report.AnalysisRequest{}, err
	}
	return req, nil
}
