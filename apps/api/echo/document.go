package echoapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core"
	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/user"
)

type documentApi struct {
	svc     *document.Service
	userSvc *user.Service
}

func registerDocumentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *document.Service, userSvc *user.Service) {
	api := documentApi{svc: svc, userSvc: userSvc}

	dg := g.Group("/documents", jwt)
	dg.POST("", api.upload)
	dg.GET("", api.query)

	ig := dg.Group("/:id")
	ig.GET("", api.retrieve)
	ig.POST("/submit", api.submit)
	ig.PUT("/status", api.updateStatus)
	ig.POST("/reviews", api.review)
	ig.GET("/reviews", api.queryReviews)
	ig.GET("/versions", api.queryVersions)
}

// upload accepts a multipart form: file + group_id, title, type and the
// optional change_description and deadline_id fields.
func (api *documentApi) upload(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}

	groupID, _ := strconv.Atoi(ctx.FormValue("group_id"))
	data := document.NewUpload{
		GroupID:           groupID,
		Title:             ctx.FormValue("title"),
		Type:              document.Type(ctx.FormValue("type")),
		Content:           content,
		Filename:          fh.Filename,
		ChangeDescription: ctx.FormValue("change_description"),
	}
	if v := ctx.FormValue("deadline_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "deadline_id", Error: "must be a number"})
		}
		data.DeadlineID = &id
	}
	if err := data.Validate(); err != nil {
		return err
	}

	doc, err := api.svc.Upload(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *documentApi) submit(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	doc, err := api.svc.Submit(ctx.Request().Context(), ctxUsr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) updateStatus(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data StatusUpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdateRequest")
	}

	doc, err := api.svc.UpdateStatus(ctx.Request().Context(), ctxUsr, id, document.Status(data.Status))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) review(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data document.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	doc, err := api.svc.Review(ctx.Request().Context(), ctxUsr, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	doc, err := api.svc.GetByID(ctxUsr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

// query lists documents by status (committee only) or by supervisor
// (committee, or the supervisor themselves).
func (api *documentApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if v := ctx.QueryParam("supervisor_id"); v != "" {
		supervisorID, err := strconv.Atoi(v)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "supervisor_id", Error: "must be a number"})
		}
		docs, err := api.svc.QueryBySupervisor(ctxUsr, supervisorID)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, emptyIfNil(docs))
	}

	status := document.Status(core.CleanString(ctx.QueryParam("status")))
	if status == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "status or supervisor_id is required"})
	}
	docs, err := api.svc.QueryByStatus(ctxUsr, status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(docs))
}

func (api *documentApi) queryVersions(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	hist, err := api.svc.VersionsByDocument(ctxUsr, id)
	if err != nil {
		return err
	}
	if hist == nil {
		hist = []document.VersionHistory{}
	}
	return ctx.JSON(http.StatusOK, hist)
}

func (api *documentApi) queryReviews(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	reviews, err := api.svc.ReviewsByDocument(ctxUsr, id)
	if err != nil {
		return err
	}
	if reviews == nil {
		reviews = []document.Review{}
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func emptyIfNil(docs []document.Document) []document.Document {
	if docs == nil {
		return []document.Document{}
	}
	return docs
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}
