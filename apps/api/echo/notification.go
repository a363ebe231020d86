package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
)

type notificationApi struct {
	svc     *notification.Service
	userSvc *user.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, userSvc *user.Service) {
	api := notificationApi{svc: svc, userSvc: userSvc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.GET("/unread", api.queryUnread)
	ng.GET("/unread/count", api.unreadCount)
	ng.PUT("/read-all", api.markAllAsRead)
	ng.PUT("/:id/read", api.markAsRead)
	ng.DELETE("/:id", api.delete)
	ng.DELETE("", api.deleteAll)
}

func (api *notificationApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	notifs, err := api.svc.QueryByUser(ctxUsr)
	if err != nil {
		return err
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) queryUnread(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	notifs, err := api.svc.QueryUnread(ctxUsr)
	if err != nil {
		return err
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	count, err := api.svc.UnreadCount(ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

func (api *notificationApi) markAsRead(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	notif, err := api.svc.MarkAsRead(ctxUsr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notif)
}

func (api *notificationApi) markAllAsRead(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.MarkAllAsRead(ctxUsr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "all notifications marked as read"})
}

func (api *notificationApi) delete(ctx echo.Context) error {
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
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "notification deleted"})
}

func (api *notificationApi) deleteAll(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteAll(ctxUsr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "all notifications deleted"})
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
