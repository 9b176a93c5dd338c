package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartsquare-server/apperr"
	"smartsquare-server/models"
)

// Upload is a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (u Upload) check(field string) error {
	if len(u.Data) == 0 {
		return apperr.NewValidation(field, "%s is empty", field)
	}
	if strings.TrimSpace(u.FileName) == "" {
		return apperr.NewValidation(field, "%s needs a file name", field)
	}
	return nil
}

type ImageInput struct {
	Upload
	Caption   string
	IsPrimary bool
	// DisplayOrder defaults to the position after the last image.
	DisplayOrder *int
}

// AddImage stores an image for the listing. At most one image per listing is
// primary; the first image becomes primary on its own.
func (s *ListingService) AddImage(ctx context.Context, actor *models.User, propertyID uuid.UUID, in ImageInput) (*models.PropertyImage, error) {
	if err := in.check("image"); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, apperr.NewValidation("image", "file must be an image")
	}
	if len(in.Caption) > 255 {
		return nil, apperr.NewValidation("caption", "caption must be at most 255")
	}
	if _, err := ownedProperty(s.db.WithContext(ctx), actor, propertyID); err != nil {
		return nil, err
	}

	url, err := s.blobs.Store(ctx, "property_images/"+propertyID.String(), in.FileName, in.Data, in.ContentType)
	if err != nil {
		return nil, err
	}

	img := &models.PropertyImage{PropertyID: propertyID, ImageURL: url, Caption: in.Caption, IsPrimary: in.IsPrimary}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats struct {
			Count    int64
			MaxOrder int
		}
		err := tx.Model(&models.PropertyImage{}).
			Select("COUNT(*) AS count, COALESCE(MAX(display_order), -1) AS max_order").
			Where("property_id = ?", propertyID).Scan(&stats).Error
		if err != nil {
			return storeErr(err, "property image")
		}
		if stats.Count == 0 {
			img.IsPrimary = true
		}
		if in.DisplayOrder != nil {
			img.DisplayOrder = *in.DisplayOrder
		} else {
			img.DisplayOrder = stats.MaxOrder + 1
		}
		if img.IsPrimary {
			if err := clearPrimary(tx, propertyID); err != nil {
				return err
			}
		}
		return storeErr(tx.Create(img).Error, "property image")
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func clearPrimary(tx *gorm.DB, propertyID uuid.UUID) error {
	err := tx.Model(&models.PropertyImage{}).
		Where("property_id = ? AND is_primary = ?", propertyID, true).
		Update("is_primary", false).Error
	return storeErr(err, "property image")
}

// SetPrimaryImage makes imageID the listing's only primary image.
func (s *ListingService) SetPrimaryImage(ctx context.Context, actor *models.User, propertyID, imageID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProperty(tx, actor, propertyID); err != nil {
			return err
		}
		var img models.PropertyImage
		if err := tx.First(&img, "id = ? AND property_id = ?", imageID, propertyID).Error; err != nil {
			return storeErr(err, "property image")
		}
		if err := clearPrimary(tx, propertyID); err != nil {
			return err
		}
		return storeErr(tx.Model(&img).Update("is_primary", true).Error, "property image")
	})
}

func (s *ListingService) DeleteImage(ctx context.Context, actor *models.User, propertyID, imageID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProperty(tx, actor, propertyID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND property_id = ?", imageID, propertyID).Delete(&models.PropertyImage{})
		if res.Error != nil {
			return storeErr(res.Error, "property image")
		}
		if res.RowsAffected == 0 {
			return apperr.NewNotFound("property image", "property image not found")
		}
		return nil
	})
}

type AmenityInput struct {
	AmenityName     string                 `json:"amenityName" validate:"required,max=100"`
	AmenityCategory models.AmenityCategory `json:"amenityCategory" validate:"required,oneof=BASIC SAFETY KITCHEN OUTDOOR"`
}

func (s *ListingService) AddAmenity(ctx context.Context, actor *models.User, propertyID uuid.UUID, in AmenityInput) (*models.PropertyAmenity, error) {
	in.AmenityName = strings.TrimSpace(in.AmenityName)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := ownedProperty(s.db.WithContext(ctx), actor, propertyID); err != nil {
		return nil, err
	}
	amenity := &models.PropertyAmenity{PropertyID: propertyID, AmenityName: in.AmenityName, AmenityCategory: in.AmenityCategory}
	if err := s.db.WithContext(ctx).Create(amenity).Error; err != nil {
		return nil, storeErr(err, "amenity")
	}
	return amenity, nil
}

func (s *ListingService) RemoveAmenity(ctx context.Context, actor *models.User, propertyID, amenityID uuid.UUID) error {
	if _, err := ownedProperty(s.db.WithContext(ctx), actor, propertyID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND property_id = ?", amenityID, propertyID).Delete(&models.PropertyAmenity{})
	if res.Error != nil {
		return storeErr(res.Error, "amenity")
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("amenity", "amenity not found")
	}
	return nil
}

type DocumentInput struct {
	Upload
	DocumentType              models.PropertyDocumentType
	DocumentName              string
	IsRequiredForVerification bool
}

// AddDocument stores a listing document such as a title deed.
func (s *ListingService) AddDocument(ctx context.Context, actor *models.User, propertyID uuid.UUID, in DocumentInput) (*models.PropertyDocument, error) {
	if err := in.check("document"); err != nil {
		return nil, err
	}
	if !in.DocumentType.Valid() {
		return nil, apperr.NewValidation("document_type", "unknown document type %q", in.DocumentType)
	}
	if in.DocumentName == "" {
		in.DocumentName = in.FileName
	}
	if _, err := ownedProperty(s.db.WithContext(ctx), actor, propertyID); err != nil {
		return nil, err
	}

	url, err := s.blobs.Store(ctx, "property_documents/"+propertyID.String(), in.FileName, in.Data, in.ContentType)
	if err != nil {
		return nil, err
	}
	doc := &models.PropertyDocument{
		PropertyID:                propertyID,
		DocumentType:              in.DocumentType,
		DocumentURL:               url,
		DocumentName:              in.DocumentName,
		IsRequiredForVerification: in.IsRequiredForVerification,
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, storeErr(err, "property document")
	}
	return doc, nil
}

// ListDocuments is limited to the owner and staff.
func (s *ListingService) ListDocuments(ctx context.Context, actor *models.User, propertyID uuid.UUID) ([]models.PropertyDocument, error) {
	if actor == nil || !actor.IsStaff {
		if _, err := ownedProperty(s.db.WithContext(ctx), actor, propertyID); err != nil {
			return nil, err
		}
	}
	var docs []models.PropertyDocument
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("uploaded_at ASC").Find(&docs).Error
	if err != nil {
		return nil, storeErr(err, "property document")
	}
	return docs, nil
}
