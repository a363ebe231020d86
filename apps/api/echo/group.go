package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/grade"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/user"
)

type groupApi struct {
	svc      *group.Service
	userSvc  *user.Service
	docSvc   *document.Service
	gradeSvc *grade.Service
}

func registerGroupAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *group.Service,
	userSvc *user.Service,
	docSvc *document.Service,
	gradeSvc *grade.Service,
) {
	api := groupApi{svc: svc, userSvc: userSvc, docSvc: docSvc, gradeSvc: gradeSvc}

	gg := g.Group("/groups", jwt)
	gg.POST("", api.create, managingCommitteeMiddleware())
	gg.GET("", api.query)

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, managingCommitteeMiddleware())
	dg.DELETE("", api.destroy, managingCommitteeMiddleware())
	dg.GET("/members", api.queryMembers)
	dg.POST("/members", api.addMember, managingCommitteeMiddleware())
	dg.DELETE("/members/:userID", api.removeMember, managingCommitteeMiddleware())
	dg.PUT("/supervisor", api.assignSupervisor, managingCommitteeMiddleware())
	dg.GET("/documents", api.queryDocuments)
	dg.GET("/grades", api.queryGrades)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	grp, err := api.svc.Create(ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	groups, err := api.svc.QueryAll(ctxUsr)
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	grp, err := api.svc.GetByID(ctxUsr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}

	grp, err := api.svc.GetByID(ctxUsr, id)
	if err != nil {
		return err
	}
	if err := data.Validate(grp, api.svc); err != nil {
		return err
	}

	grp, err = api.svc.Update(ctxUsr, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctxUsr, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) queryMembers(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	members, err := api.svc.Members(ctxUsr, id)
	if err != nil {
		return err
	}
	if members == nil {
		members = []user.User{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *groupApi) addMember(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data MemberRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MemberRequest")
	}

	grp, err := api.svc.AddMember(ctxUsr, id, data.UserID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) removeMember(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	userID, err := intParam(ctx, "userID")
	if err != nil {
		return err
	}

	grp, err := api.svc.RemoveMember(ctxUsr, id, userID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) assignSupervisor(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data SupervisorRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SupervisorRequest")
	}

	grp, err := api.svc.AssignSupervisor(ctxUsr, id, data.SupervisorID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) queryDocuments(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	docs, err := api.docSvc.QueryByGroup(ctxUsr, id)
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *groupApi) queryGrades(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	grades, err := api.gradeSvc.QueryByGroup(ctxUsr, id)
	if err != nil {
		return err
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

type (
	MemberRequest struct {
		UserID int `json:"user_id" validate:"required"`
	}

	SupervisorRequest struct {
		SupervisorID int `json:"supervisor_id" validate:"required"`
	}
)
