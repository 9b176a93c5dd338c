package routes

import (
	"net/http"

	"github.com/kataras/iris/v12"

	"smartsquare-server/models"
	"smartsquare-server/services"
)

// SubmitVerification takes a multipart form with verificationType and one or
// more files under documents. documentType, when sent, labels every file.
func (h *Handler) SubmitVerification(ctx iris.Context) {
	if !parseMultipart(ctx) {
		return
	}
	uploads, err := formUploads(ctx, "documents")
	if err != nil {
		writeError(ctx, err)
		return
	}
	docs := make([]services.DocumentUpload, 0, len(uploads))
	for _, up := range uploads {
		docs = append(docs, services.DocumentUpload{Upload: up, DocumentType: ctx.FormValue("documentType")})
	}
	kind := models.VerificationType(ctx.FormValue("verificationType"))
	v, err := h.svc.Verifications.Submit(ctx.Request().Context(), actor(ctx), kind, docs)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(v)
}

func (h *Handler) MyVerifications(ctx iris.Context) {
	list, err := h.svc.Verifications.ListMine(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(list)
}

func (h *Handler) GetVerification(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	v, err := h.svc.Verifications.Get(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(v)
}

func (h *Handler) PendingVerifications(ctx iris.Context) {
	list, err := h.svc.Verifications.ListPending(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(list)
}

func (h *Handler) ApproveVerification(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	v, err := h.svc.Verifications.Approve(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(v)
}

func (h *Handler) RejectVerification(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"rejectionReason"`
	}
	if !readJSON(ctx, &body) {
		return
	}
	v, err := h.svc.Verifications.Reject(ctx.Request().Context(), actor(ctx), id, body.Reason)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(v)
}
