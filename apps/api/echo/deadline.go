package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/user"
)

type deadlineApi struct {
	svc     *document.DeadlineService
	userSvc *user.Service
}

func registerDeadlineAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *document.DeadlineService, userSvc *user.Service) {
	api := deadlineApi{svc: svc, userSvc: userSvc}

	dg := g.Group("/deadlines", jwt)
	dg.POST("", api.create, managingCommitteeMiddleware())
	dg.GET("", api.query)
	dg.GET("/active", api.queryActive)
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id/deactivate", api.deactivate, managingCommitteeMiddleware())
	dg.DELETE("/:id", api.delete, managingCommitteeMiddleware())
}

func (api *deadlineApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data document.NewDeadline
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDeadline")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	dl, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dl)
}

func (api *deadlineApi) query(ctx echo.Context) error {
	dls, err := api.svc.QueryAll()
	if err != nil {
		return err
	}
	if dls == nil {
		dls = []document.Deadline{}
	}
	return ctx.JSON(http.StatusOK, dls)
}

func (api *deadlineApi) queryActive(ctx echo.Context) error {
	dls, err := api.svc.QueryActive()
	if err != nil {
		return err
	}
	if dls == nil {
		dls = []document.Deadline{}
	}
	return ctx.JSON(http.StatusOK, dls)
}

func (api *deadlineApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	dl, err := api.svc.GetByID(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dl)
}

func (api *deadlineApi) deactivate(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	dl, err := api.svc.Deactivate(ctxUsr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dl)
}

func (api *deadlineApi) delete(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctxUsr, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "deadline deleted"})
}
