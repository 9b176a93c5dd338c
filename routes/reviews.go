package routes

import (
	"net/http"

	"github.com/kataras/iris/v12"

	"smartsquare-server/services"
)

func (h *Handler) CreateReview(ctx iris.Context) {
	var in services.ReviewInput
	if !readJSON(ctx, &in) {
		return
	}
	review, err := h.svc.Reviews.Submit(ctx.Request().Context(), actor(ctx), in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(review)
}

func (h *Handler) PropertyReviews(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	reviews, err := h.svc.Reviews.ListForProperty(ctx.Request().Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(reviews)
}

func (h *Handler) UserReviews(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	reviews, err := h.svc.Reviews.ListForUser(ctx.Request().Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(reviews)
}
