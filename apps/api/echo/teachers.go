package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/teacher"
	"github.com/shulehub/shule/core/user"
)

type teacherApi struct {
	deps ServerDeps
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := teacherApi{deps: deps}

	tg := g.Group("/teachers", jwt)
	tg.POST("", api.hire, adminMiddleware())
	tg.GET("", api.query, adminMiddleware())
	tg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/class", api.assignClass, adminMiddleware())
}

func (api *teacherApi) hire(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	res, err := api.deps.Provisioner.ProvisionTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "provisioning teacher")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *teacherApi) query(ctx echo.Context) error {
	var filter teacher.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	teachers, err := api.deps.TeacherSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	t, err := api.deps.TeacherSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding teacher")
	}

	// the profile is owned by the provisioned login, not the personal email
	owner := api.deps.Provisioner.LoginEmail(user.RoleTeacher, t.ID)
	if !access.CanAccess(actor, access.Resource{Kind: access.KindTeacher, Class: t.Class, OwnerEmail: owner}) {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teacherApi) assignClass(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data struct {
		Class string `json:"class"`
	}
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding class")
	}

	t, err := api.deps.TeacherSvc.AssignClass(ctx.Request().Context(), id, data.Class)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "assigning class")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teacherApi) destroyMultiple(ctx echo.Context) error {
	var data struct {
		IDs []int `json:"ids" query:"id"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding ids")
	}
	if len(data.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.TeacherSvc.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	return ctx.NoContent(http.StatusNoContent)
}
