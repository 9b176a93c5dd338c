package routes

import (
	"github.com/kataras/iris/v12"

	"smartsquare-server/services"
)

func (h *Handler) ListNotifications(ctx iris.Context) {
	f := services.NotificationFilter{
		Limit:  ctx.URLParamIntDefault("limit", 0),
		Offset: ctx.URLParamIntDefault("offset", 0),
	}
	f.UnreadOnly, _ = ctx.URLParamBool("unread")

	notes, err := h.svc.Notifications.List(ctx.Request().Context(), actor(ctx), f)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(notes)
}

func (h *Handler) MarkNotificationRead(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	n, err := h.svc.Notifications.MarkRead(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(n)
}

func (h *Handler) MarkAllNotificationsRead(ctx iris.Context) {
	changed, err := h.svc.Notifications.MarkAllRead(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"updated": changed})
}

func (h *Handler) UnreadNotificationCount(ctx iris.Context) {
	count, err := h.svc.Notifications.UnreadCount(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"unread": count})
}
