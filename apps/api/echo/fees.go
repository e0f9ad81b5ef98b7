package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core/access"
	"github.com/shulehub/shule/core/fee"
	"github.com/shulehub/shule/core/user"
)

type feeApi struct {
	deps ServerDeps
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := feeApi{deps: deps}

	fg := g.Group("/fees", jwt)
	fg.POST("", api.bill, adminMiddleware())
	fg.GET("", api.query)
	fg.PUT("/:id/pay", api.markPaid, adminMiddleware())
	fg.GET("/student/:regNo", api.ledger)
}

func (api *feeApi) bill(ctx echo.Context) error {
	var data fee.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	f, err := api.deps.FeeSvc.Bill(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "billing fee")
	}
	return ctx.JSON(http.StatusCreated, f)
}

// query lists fee records. Admins see everything; teachers their class only.
func (api *feeApi) query(ctx echo.Context) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}

	var filter fee.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	switch actor.Role {
	case user.RoleAdmin:
	case user.RoleTeacher:
		filter.Class = actor.Class
		if !access.CanAccess(actor, access.Resource{Kind: access.KindFee, Class: filter.Class}) {
			return errHttpForbidden
		}
	default:
		return errHttpForbidden
	}

	fees, err := api.deps.FeeSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) markPaid(ctx echo.Context) error {
	f, err := api.deps.FeeSvc.MarkPaid(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == fee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking fee paid")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) ledger(ctx echo.Context) error {
	actor, err := resolveActor(ctx, api.deps)
	if err != nil {
		return err
	}
	regNo, err := strconv.Atoi(ctx.Param("regNo"))
	if err != nil {
		return errHttpNotFound
	}

	fees, err := api.deps.FeeSvc.LedgerFor(ctx.Request().Context(), regNo)
	if err != nil {
		return errors.Wrap(err, "getting fee ledger")
	}

	var class string
	if len(fees) > 0 {
		class = fees[0].Class
	}
	if !access.CanAccess(actor, access.Resource{Kind: access.KindFee, Class: class, RegNo: regNo}) {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, fees)
}
