package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core/grade"
	"github.com/trezcool/fyptrack/core/user"
)

type gradeApi struct {
	svc     *grade.Service
	userSvc *user.Service
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *grade.Service, userSvc *user.Service) {
	api := gradeApi{svc: svc, userSvc: userSvc}

	gg := g.Group("/grades", jwt)
	gg.POST("", api.assign, committeeMiddleware())
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id/finalize", api.finalize, managingCommitteeMiddleware())
}

func (api *gradeApi) assign(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grd, err := api.svc.Assign(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grd)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	grd, err := api.svc.GetByID(ctxUsr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *gradeApi) finalize(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	grd, err := api.svc.MarkFinal(ctx.Request().Context(), ctxUsr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grd)
}
