package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/marks"
	"github.com/shulehub/shule/core/student"
)

type marksApi struct {
	deps ServerDeps
}

func registerMarksAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := marksApi{deps: deps}

	mg := g.Group("/marks", jwt)
	mg.GET("/class/:class", api.queryByClass)

	dg := mg.Group("/:regNo")
	dg.GET("", api.sheet)
	dg.POST("", api.submitTerm)
	dg.GET("/summary", api.summary)
	dg.GET("/history", api.history)
}

func (api *marksApi) resolveStudent(ctx echo.Context) (student.Student, error) {
	regNo, err := strconv.Atoi(ctx.Param("regNo"))
	if err != nil {
		return student.Student{}, errHttpNotFound
	}
	s, err := api.deps.StudentSvc.GetByRegNo(ctx.Request().Context(), regNo)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student")
	}
	return s, nil
}

func (api *marksApi) checkAccess(ctx echo.Context, s student.Student, write bool) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}
	res := access.Resource{Kind: access.KindMarks, Class: s.Class, RegNo: s.RegNo, Write: write}
	if !access.CanAccess(actor, res) {
		return errHttpForbidden
	}
	return nil
}

func (api *marksApi) sheet(ctx echo.Context) error {
	s, err := api.resolveStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.checkAccess(ctx, s, false); err != nil {
		return err
	}

	sheet, err := api.deps.MarksSvc.SheetFor(ctx.Request().Context(), s.RegNo)
	if err != nil {
		if errors.Cause(err) == marks.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting marks sheet")
	}
	return ctx.JSON(http.StatusOK, sheet)
}

type SubmitTermRequest struct {
	Term  string          `json:"term" validate:"required"`
	Marks marks.TermMarks `json:"marks" validate:"required"`
}

// submitTerm merge-writes one term of a student's sheet; earlier terms are
// untouched. Teachers may only write within their own class.
func (api *marksApi) submitTerm(ctx echo.Context) error {
	s, err := api.resolveStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.checkAccess(ctx, s, true); err != nil {
		return err
	}

	var data SubmitTermRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitTermRequest")
	}
	if err = api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	sheet, err := api.deps.MarksSvc.SubmitTerm(ctx.Request().Context(), s.RegNo, s.Class, data.Term, data.Marks)
	if err != nil {
		if vErr := (*core.ValidationError)(nil); errors.As(err, &vErr) {
			return vErr
		}
		return errors.Wrap(err, "submitting term marks")
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (api *marksApi) summary(ctx echo.Context) error {
	s, err := api.resolveStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.checkAccess(ctx, s, false); err != nil {
		return err
	}

	term := ctx.QueryParam("term")
	if term == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "term", Error: "this field is required"})
	}

	sum, err := api.deps.MarksSvc.Summary(ctx.Request().Context(), s.RegNo, term)
	if err != nil {
		if errors.Cause(err) == marks.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "summarizing term")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *marksApi) history(ctx echo.Context) error {
	s, err := api.resolveStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.checkAccess(ctx, s, false); err != nil {
		return err
	}

	entries, err := api.deps.MarksSvc.History(ctx.Request().Context(), s.RegNo)
	if err != nil {
		return errors.Wrap(err, "getting marks history")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *marksApi) queryByClass(ctx echo.Context) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}
	class := ctx.Param("class")
	if !access.CanAccess(actor, access.Resource{Kind: access.KindMarks, Class: class}) {
		return errHttpForbidden
	}

	sheets, err := api.deps.MarksSvc.SheetsByClass(ctx.Request().Context(), class)
	if err != nil {
		return errors.Wrap(err, "querying class sheets")
	}
	return ctx.JSON(http.StatusOK, sheets)
}
