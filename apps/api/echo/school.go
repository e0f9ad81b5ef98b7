package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/school"
)

type schoolApi struct {
	deps ServerDeps
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := schoolApi{deps: deps}

	cg := g.Group("/classes", jwt)
	cg.POST("", api.addClass, adminMiddleware())
	cg.GET("", api.queryClasses)
	cg.DELETE("/:name", api.removeClass, adminMiddleware())

	dg := cg.Group("/:name")
	dg.GET("/syllabus", api.syllabus)
	dg.PUT("/syllabus", api.setOutline, adminMiddleware())
	dg.DELETE("/syllabus/:subject", api.removeOutline, adminMiddleware())
	dg.GET("/timetable", api.timetable)
	dg.PUT("/timetable", api.setTimetable, adminMiddleware())
}

func (api *schoolApi) addClass(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err := api.deps.SchoolSvc.AddClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

// queryClasses is readable by every role; class names drive every portal's
// pickers.
func (api *schoolApi) queryClasses(ctx echo.Context) error {
	if _, err := resolveActor(ctx, api.deps); err != nil {
		return err
	}
	classes, err := api.deps.SchoolSvc.Classes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) removeClass(ctx echo.Context) error {
	if err := api.deps.SchoolSvc.RemoveClass(ctx.Request().Context(), ctx.Param("name")); err != nil {
		if errors.Cause(err) == school.ErrClassNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) checkClassRead(ctx echo.Context, kind access.Kind) (string, error) {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return "", err
	}
	class := ctx.Param("name")
	if !access.CanAccess(actor, access.Resource{Kind: kind, Class: class}) {
		return "", errHttpForbidden
	}
	return class, nil
}

func (api *schoolApi) syllabus(ctx echo.Context) error {
	class, err := api.checkClassRead(ctx, access.KindSyllabus)
	if err != nil {
		return err
	}

	syl, err := api.deps.SchoolSvc.SyllabusFor(ctx.Request().Context(), class)
	if err != nil {
		if errors.Cause(err) == school.ErrSyllabusNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting syllabus")
	}
	return ctx.JSON(http.StatusOK, syl)
}

type SetOutlineRequest struct {
	Subject string `json:"subject" validate:"required"`
	Outline string `json:"outline" validate:"required"`
}

func (api *schoolApi) setOutline(ctx echo.Context) error {
	var data SetOutlineRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetOutlineRequest")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	syl, err := api.deps.SchoolSvc.SetOutline(ctx.Request().Context(), ctx.Param("name"), data.Subject, data.Outline)
	if err != nil {
		return errors.Wrap(err, "setting syllabus outline")
	}
	return ctx.JSON(http.StatusOK, syl)
}

func (api *schoolApi) removeOutline(ctx echo.Context) error {
	err := api.deps.SchoolSvc.RemoveOutline(ctx.Request().Context(), ctx.Param("name"), ctx.Param("subject"))
	if err != nil {
		if errors.Cause(err) == school.ErrSyllabusNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing syllabus outline")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) timetable(ctx echo.Context) error {
	class, err := api.checkClassRead(ctx, access.KindTimetable)
	if err != nil {
		return err
	}

	entries, err := api.deps.SchoolSvc.TimetableFor(ctx.Request().Context(), class)
	if err != nil {
		return errors.Wrap(err, "getting timetable")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *schoolApi) setTimetable(ctx echo.Context) error {
	var data school.TimetableEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TimetableEntry")
	}
	data.Class = ctx.Param("name")
	if data.Day == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "day", Error: "this field is required"})
	}

	e, err := api.deps.SchoolSvc.SetTimetable(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "setting timetable")
	}
	return ctx.JSON(http.StatusOK, e)
}
