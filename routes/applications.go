// routes/applications.go
package routes

import (
	"net/http"

	"github.com/kataras/iris/v12"

	"smartsquare-server/services"
)

func (h *Handler) CreateApplication(ctx iris.Context) {
	var in services.ApplicationInput
	if !readJSON(ctx, &in) {
		return
	}
	app, err := h.svc.Applications.Apply(ctx.Request().Context(), actor(ctx), in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(app)
}

func (h *Handler) GetApplication(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	app, err := h.svc.Applications.Get(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(app)
}

// MyApplications lists the applications the caller has sent as a tenant.
func (h *Handler) MyApplications(ctx iris.Context) {
	apps, err := h.svc.Applications.ListForTenant(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(apps)
}

func (h *Handler) PropertyApplications(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	apps, err := h.svc.Applications.ListForProperty(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(apps)
}

func (h *Handler) RespondToApplication(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var in services.RespondInput
	if !readJSON(ctx, &in) {
		return
	}
	app, err := h.svc.Applications.Respond(ctx.Request().Context(), actor(ctx), id, in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(app)
}

func (h *Handler) WithdrawApplication(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	app, err := h.svc.Applications.Withdraw(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(app)
}
