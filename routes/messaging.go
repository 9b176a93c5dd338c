package routes

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

func (h *Handler) StartConversation(ctx iris.Context) {
	var body struct {
		ParticipantID uuid.UUID  `json:"participantId"`
		PropertyID    *uuid.UUID `json:"propertyId"`
	}
	if !readJSON(ctx, &body) {
		return
	}
	if body.ParticipantID == uuid.Nil {
		badRequest(ctx, "participantId is required")
		return
	}
	conv, err := h.svc.Messaging.StartConversation(ctx.Request().Context(), actor(ctx), body.ParticipantID, body.PropertyID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(conv)
}

func (h *Handler) ListConversations(ctx iris.Context) {
	convs, err := h.svc.Messaging.ListConversations(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(convs)
}

func (h *Handler) ListMessages(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	msgs, err := h.svc.Messaging.ListMessages(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(msgs)
}

func (h *Handler) SendMessage(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Content string `json:"messageContent"`
	}
	if !readJSON(ctx, &body) {
		return
	}
	msg, err := h.svc.Messaging.SendMessage(ctx.Request().Context(), actor(ctx), id, body.Content)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(msg)
}

func (h *Handler) MarkMessageRead(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	msg, err := h.svc.Messaging.MarkRead(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(msg)
}

func (h *Handler) UnreadMessageCount(ctx iris.Context) {
	count, err := h.svc.Messaging.UnreadMessages(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"unread": count})
}
