package routes

import (
	"errors"
	"net/http"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"

	"smartsquare-server/apperr"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Permission:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.UniqueConstraint:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps a service error onto the response. Anything outside the
// apperr taxonomy is logged and reported as a 500 without details.
func writeError(ctx iris.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		golog.Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "Internal server error"})
		return
	}
	body := iris.Map{"error": appErr.Message, "code": appErr.Kind}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	ctx.StopWithJSON(statusFor(appErr.Kind), body)
}

func badRequest(ctx iris.Context, msg string) {
	ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": msg, "code": apperr.Validation})
}
