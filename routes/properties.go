package routes

import (
	"net/http"
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"smartsquare-server/models"
	"smartsquare-server/services"
)

func decimalParam(ctx iris.Context, name string) (decimal.NullDecimal, bool) {
	raw := ctx.URLParamTrim(name)
	if raw == "" {
		return decimal.NullDecimal{}, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		badRequest(ctx, "Invalid "+name)
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}

func (h *Handler) ListProperties(ctx iris.Context) {
	f := services.ListFilter{
		City:         ctx.URLParamTrim("city"),
		PropertyType: models.PropertyType(ctx.URLParamTrim("propertyType")),
		Bedrooms:     ctx.URLParamIntDefault("bedrooms", 0),
		Limit:        ctx.URLParamIntDefault("limit", 0),
		Offset:       ctx.URLParamIntDefault("offset", 0),
	}
	var ok bool
	if f.MinPrice, ok = decimalParam(ctx, "minPrice"); !ok {
		return
	}
	if f.MaxPrice, ok = decimalParam(ctx, "maxPrice"); !ok {
		return
	}
	properties, err := h.svc.Listings.ListActive(ctx.Request().Context(), f)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(properties)
}

// GetProperty records a view and returns the listing with its rating summary.
func (h *Handler) GetProperty(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	property, err := h.svc.Listings.ViewProperty(ctx.Request().Context(), id, actor(ctx), ctx.RemoteAddr())
	if err != nil {
		writeError(ctx, err)
		return
	}
	rating, err := h.svc.Reviews.AverageForProperty(ctx.Request().Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"property": property, "rating": rating})
}

func (h *Handler) MyProperties(ctx iris.Context) {
	properties, err := h.svc.Listings.ListByOwner(ctx.Request().Context(), userID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(properties)
}

func (h *Handler) CreateProperty(ctx iris.Context) {
	var in services.PropertyInput
	if !readJSON(ctx, &in) {
		return
	}
	property, err := h.svc.Listings.CreateProperty(ctx.Request().Context(), actor(ctx), in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(property)
}

// UpdateProperty applies a partial update: fields missing from the body keep
// their stored values.
func (h *Handler) UpdateProperty(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	current, err := h.svc.Listings.GetProperty(ctx.Request().Context(), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	in := services.InputFromProperty(current)
	if !readJSON(ctx, &in) {
		return
	}
	property, err := h.svc.Listings.UpdateProperty(ctx.Request().Context(), actor(ctx), id, in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(property)
}

func (h *Handler) DeleteProperty(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.Listings.DeleteProperty(ctx.Request().Context(), actor(ctx), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func (h *Handler) ChangePropertyStatus(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.ListingStatus `json:"status"`
	}
	if !readJSON(ctx, &body) {
		return
	}
	property, err := h.svc.Listings.ChangeStatus(ctx.Request().Context(), actor(ctx), id, body.Status)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(property)
}

func (h *Handler) AddPropertyImage(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok || !parseMultipart(ctx) {
		return
	}
	up, err := firstUpload(ctx, "image")
	if err != nil {
		writeError(ctx, err)
		return
	}
	in := services.ImageInput{Upload: up, Caption: ctx.FormValue("caption")}
	in.IsPrimary, _ = strconv.ParseBool(ctx.FormValue("isPrimary"))
	if raw := ctx.FormValue("displayOrder"); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(ctx, "Invalid displayOrder")
			return
		}
		in.DisplayOrder = &order
	}
	img, err := h.svc.Listings.AddImage(ctx.Request().Context(), actor(ctx), id, in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(img)
}

func (h *Handler) SetPrimaryImage(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	imageID, ok := idParam(ctx, "imageId")
	if !ok {
		return
	}
	if err := h.svc.Listings.SetPrimaryImage(ctx.Request().Context(), actor(ctx), id, imageID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func (h *Handler) DeletePropertyImage(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	imageID, ok := idParam(ctx, "imageId")
	if !ok {
		return
	}
	if err := h.svc.Listings.DeleteImage(ctx.Request().Context(), actor(ctx), id, imageID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func (h *Handler) AddAmenity(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var in services.AmenityInput
	if !readJSON(ctx, &in) {
		return
	}
	amenity, err := h.svc.Listings.AddAmenity(ctx.Request().Context(), actor(ctx), id, in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(amenity)
}

func (h *Handler) RemoveAmenity(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	amenityID, ok := idParam(ctx, "amenityId")
	if !ok {
		return
	}
	if err := h.svc.Listings.RemoveAmenity(ctx.Request().Context(), actor(ctx), id, amenityID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func (h *Handler) AddPropertyDocument(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok || !parseMultipart(ctx) {
		return
	}
	up, err := firstUpload(ctx, "document")
	if err != nil {
		writeError(ctx, err)
		return
	}
	in := services.DocumentInput{
		Upload:       up,
		DocumentType: models.PropertyDocumentType(ctx.FormValue("documentType")),
		DocumentName: ctx.FormValue("documentName"),
	}
	in.IsRequiredForVerification, _ = strconv.ParseBool(ctx.FormValue("isRequiredForVerification"))
	doc, err := h.svc.Listings.AddDocument(ctx.Request().Context(), actor(ctx), id, in)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(doc)
}

func (h *Handler) ListPropertyDocuments(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	docs, err := h.svc.Listings.ListDocuments(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(docs)
}

func (h *Handler) SaveProperty(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if ctx.GetContentLength() > 0 && !readJSON(ctx, &body) {
		return
	}
	saved, err := h.svc.Listings.SaveProperty(ctx.Request().Context(), actor(ctx), id, body.Notes)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(saved)
}

func (h *Handler) UnsaveProperty(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.Listings.UnsaveProperty(ctx.Request().Context(), actor(ctx), id); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func (h *Handler) SavedProperties(ctx iris.Context) {
	saved, err := h.svc.Listings.ListSaved(ctx.Request().Context(), actor(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(saved)
}

func (h *Handler) VerifyProperty(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	property, err := h.svc.Listings.VerifyProperty(ctx.Request().Context(), actor(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(property)
}
