package routes

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"

	"smartsquare-server/models"
	"smartsquare-server/services"
)

const (
	userIDKey = "userID"
	actorKey  = "actor"

	maxUploadSize = 10 << 20
)

// actor returns the authenticated user, or nil on public routes.
func actor(ctx iris.Context) *models.User {
	u, _ := ctx.Values().Get(actorKey).(*models.User)
	return u
}

// userID returns the authenticated user's id, or uuid.Nil on public routes.
func userID(ctx iris.Context) uuid.UUID {
	id, _ := ctx.Values().Get(userIDKey).(uuid.UUID)
	return id
}

// idParam parses a uuid path parameter and answers 400 if it is malformed.
func idParam(ctx iris.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Params().Get(name))
	if err != nil {
		badRequest(ctx, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func readJSON(ctx iris.Context, v interface{}) bool {
	if err := ctx.ReadJSON(v); err != nil {
		badRequest(ctx, "Invalid request payload")
		return false
	}
	return true
}

func parseMultipart(ctx iris.Context) bool {
	if err := ctx.Request().ParseMultipartForm(maxUploadSize); err != nil {
		badRequest(ctx, "Invalid multipart form")
		return false
	}
	return true
}

// formUploads reads every file sent under key.
func formUploads(ctx iris.Context, key string) ([]services.Upload, error) {
	form := ctx.Request().MultipartForm
	if form == nil {
		return nil, nil
	}
	var uploads []services.Upload
	for _, fh := range form.File[key] {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (services.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return services.Upload{FileName: fh.Filename, ContentType: contentType, Data: data}, nil
}

// firstUpload returns the single file sent under key, or an empty Upload the
// services will reject.
func firstUpload(ctx iris.Context, key string) (services.Upload, error) {
	uploads, err := formUploads(ctx, key)
	if err != nil || len(uploads) == 0 {
		return services.Upload{}, err
	}
	return uploads[0], nil
}
