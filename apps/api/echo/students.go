package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/user"
)

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{deps: deps}

	sg := g.Group("/students", jwt)
	sg.POST("", api.admit, adminMiddleware())
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := sg.Group("/:regNo")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
}

// admit provisions a new student: sequential registration number, student
// record, role record and login credential, all-or-nothing.
func (api *studentApi) admit(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	res, err := api.deps.Provisioner.ProvisionStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "provisioning student")
	}
	return ctx.JSON(http.StatusCreated, res)
}

// query lists students. Admins see everything; teachers only their class.
func (api *studentApi) query(ctx echo.Context) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}

	var filter student.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	switch actor.Role {
	case user.RoleAdmin:
	case user.RoleTeacher:
		// force the teacher's class scope, whatever was asked for
		filter.Class = actor.Class
		if !access.CanAccess(actor, access.Resource{Kind: access.KindStudent, Class: filter.Class}) {
			return errHttpForbidden
		}
	default:
		return errHttpForbidden
	}

	students, err := api.deps.StudentSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}
	regNo, err := strconv.Atoi(ctx.Param("regNo"))
	if err != nil {
		return errHttpNotFound
	}

	s, err := api.deps.StudentSvc.GetByRegNo(ctx.Request().Context(), regNo)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student")
	}

	res := access.Resource{Kind: access.KindStudent, Class: s.Class, OwnerEmail: s.Email, RegNo: s.RegNo}
	if !access.CanAccess(actor, res) {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	regNo, err := strconv.Atoi(ctx.Param("regNo"))
	if err != nil {
		return errHttpNotFound
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	s, err := api.deps.StudentSvc.Update(ctx.Request().Context(), regNo, data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var data struct {
		RegNos []int `json:"reg_nos" query:"reg_no"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding reg numbers")
	}
	if len(data.RegNos) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.deps.StudentSvc.Delete(ctx.Request().Context(), data.RegNos...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}
