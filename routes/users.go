package routes

import (
	"net/http"

	"github.com/kataras/iris/v12"

	"smartsquare-server/models"
	"smartsquare-server/services"
)

func (h *Handler) tokenResponse(ctx iris.Context, status int, user *models.User) {
	token, err := h.issuer.Generate(user.ID, string(user.UserType), user.IsStaff)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"token": token, "user": user.Profile()})
}

func (h *Handler) Register(ctx iris.Context) {
	var in services.RegisterInput
	if !readJSON(ctx, &in) {
		return
	}
	user, err := h.svc.Users.Register(ctx.Request().Context(), in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	h.tokenResponse(ctx, http.StatusCreated, user)
}

func (h *Handler) Login(ctx iris.Context) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !readJSON(ctx, &creds) {
		return
	}
	user, err := h.svc.Users.Authenticate(ctx.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}
	h.tokenResponse(ctx, http.StatusOK, user)
}

func (h *Handler) Me(ctx iris.Context) {
	ctx.JSON(actor(ctx).Profile())
}

func (h *Handler) UpdateMe(ctx iris.Context) {
	var in services.ProfileInput
	if !readJSON(ctx, &in) {
		return
	}
	user, err := h.svc.Users.UpdateProfile(ctx.Request().Context(), actor(ctx), userID(ctx), in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(user.Profile())
}

func (h *Handler) UploadProfilePicture(ctx iris.Context) {
	if !parseMultipart(ctx) {
		return
	}
	up, err := firstUpload(ctx, "picture")
	if err != nil {
		writeError(ctx, err)
		return
	}
	user, err := h.svc.Users.UploadProfilePicture(ctx.Request().Context(), actor(ctx), up.FileName, up.Data, up.ContentType)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(user.Profile())
}

func (h *Handler) GetUser(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	user, err := h.svc.Users.GetByID(ctx.Request().Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(user)
}
