package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/user"
)

type userApi struct {
	deps ServerDeps
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{deps: deps}

	ug := g.Group("/users", jwt)
	ug.GET("", api.query, adminMiddleware())
	ug.DELETE("", api.destroyMultiple, adminMiddleware())
	ug.GET("/roles", api.queryRoles, adminMiddleware())

	dg := ug.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/active", api.setActive, adminMiddleware())
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	reqCtx := ctx.Request().Context()
	if filter.IsEmpty() {
		users, err := api.deps.UserSvc.QueryAll(reqCtx)
		if err != nil {
			return errors.Wrap(err, "querying users")
		}
		return ctx.JSON(http.StatusOK, users)
	}

	users, err := api.deps.UserSvc.Filter(reqCtx, filter)
	if err != nil {
		return errors.Wrap(err, "filtering users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.AllRoles)
}

// retrieve returns a role record; non-admins can only see their own.
func (api *userApi) retrieve(ctx echo.Context) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	if !access.CanAccess(actor, access.Resource{Kind: access.KindUser, OwnerEmail: usr.Email}) {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setActive(ctx echo.Context) error {
	var data struct {
		IsActive bool `json:"is_active"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding active flag")
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.deps.UserSvc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	usr, err = api.deps.UserSvc.SetActive(reqCtx, usr, data.IsActive)
	if err != nil {
		return errors.Wrap(err, "setting active flag")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	var data struct {
		IDs []string `json:"ids" query:"id"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding ids")
	}
	if len(data.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.UserSvc.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}
