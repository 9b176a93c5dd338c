package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smartsquare-server/apperr"
	"smartsquare-server/blobstore"
	"smartsquare-server/models"
	"smartsquare-server/policy"
)

type ListingService struct {
	db            *gorm.DB
	blobs         blobstore.Store
	notifications *NotificationService
	now           func() time.Time
}

// PropertyInput carries the owner-editable listing fields.
type PropertyInput struct {
	Title         string              `json:"title" validate:"required,max=255"`
	Description   string              `json:"description"`
	PropertyType  models.PropertyType `json:"propertyType" validate:"required,oneof=APARTMENT HOUSE STUDIO ROOM COMMERCIAL HOSTEL"`
	PricePerMonth decimal.Decimal     `json:"pricePerMonth"`
	Currency      string              `json:"currency" validate:"omitempty,len=3,alpha"`
	AddressLine1  string              `json:"addressLine1" validate:"required,max=255"`
	AddressLine2  string              `json:"addressLine2" validate:"max=255"`
	City          string              `json:"city" validate:"required,max=100"`
	State         string              `json:"state" validate:"max=100"`
	PostalCode    string              `json:"postalCode" validate:"max=20"`
	Region        string              `json:"region" validate:"max=100"`
	Latitude      decimal.NullDecimal `json:"latitude"`
	Longitude     decimal.NullDecimal `json:"longitude"`
	Bedrooms      int                 `json:"bedrooms" validate:"min=0"`
	Bathrooms     int                 `json:"bathrooms" validate:"min=0"`
	SquareFeet    decimal.NullDecimal `json:"squareFeet"`
	IsFurnished   bool                `json:"isFurnished"`
	PetsAllowed   bool                `json:"petsAllowed"`
	AvailableFrom string              `json:"availableFrom" validate:"required,datetime=2006-01-02"`
}

var (
	maxPrice     = decimal.New(1, 8)
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

// check runs the rules the struct tags cannot express and normalizes the
// decimal fields to their column precision.
func (in *PropertyInput) check() error {
	if err := validateInput(in); err != nil {
		return err
	}
	if !in.PricePerMonth.IsPositive() || in.PricePerMonth.GreaterThanOrEqual(maxPrice) {
		return apperr.NewValidation("price_per_month", "price_per_month must be greater than 0 and less than %s", maxPrice)
	}
	in.PricePerMonth = in.PricePerMonth.Round(2)
	if in.Latitude.Valid {
		if in.Latitude.Decimal.Abs().GreaterThan(maxLatitude) {
			return apperr.NewValidation("latitude", "latitude must be between -90 and 90")
		}
		in.Latitude.Decimal = in.Latitude.Decimal.Round(6)
	}
	if in.Longitude.Valid {
		if in.Longitude.Decimal.Abs().GreaterThan(maxLongitude) {
			return apperr.NewValidation("longitude", "longitude must be between -180 and 180")
		}
		in.Longitude.Decimal = in.Longitude.Decimal.Round(6)
	}
	if in.SquareFeet.Valid {
		if in.SquareFeet.Decimal.IsNegative() || in.SquareFeet.Decimal.GreaterThanOrEqual(maxPrice) {
			return apperr.NewValidation("square_feet", "square_feet is out of range")
		}
		in.SquareFeet.Decimal = in.SquareFeet.Decimal.Round(2)
	}
	if in.Currency == "" {
		in.Currency = models.DefaultCurrency
	}
	in.Currency = strings.ToUpper(in.Currency)
	return nil
}

func (in *PropertyInput) apply(p *models.Property) error {
	available, err := parseDate("available_from", in.AvailableFrom)
	if err != nil {
		return err
	}
	p.Title = in.Title
	p.Description = in.Description
	p.PropertyType = in.PropertyType
	p.PricePerMonth = in.PricePerMonth
	p.Currency = in.Currency
	p.AddressLine1 = in.AddressLine1
	p.AddressLine2 = in.AddressLine2
	p.City = in.City
	p.State = in.State
	p.PostalCode = in.PostalCode
	p.Region = in.Region
	p.Latitude = in.Latitude
	p.Longitude = in.Longitude
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.SquareFeet = in.SquareFeet
	p.IsFurnished = in.IsFurnished
	p.PetsAllowed = in.PetsAllowed
	p.AvailableFrom = datatypes.Date(available)
	return nil
}

// InputFromProperty returns the editable fields of p, so a partial update can
// be decoded on top of the current values.
func InputFromProperty(p *models.Property) PropertyInput {
	return PropertyInput{
		Title:         p.Title,
		Description:   p.Description,
		PropertyType:  p.PropertyType,
		PricePerMonth: p.PricePerMonth,
		Currency:      p.Currency,
		AddressLine1:  p.AddressLine1,
		AddressLine2:  p.AddressLine2,
		City:          p.City,
		State:         p.State,
		PostalCode:    p.PostalCode,
		Region:        p.Region,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		SquareFeet:    p.SquareFeet,
		IsFurnished:   p.IsFurnished,
		PetsAllowed:   p.PetsAllowed,
		AvailableFrom: time.Time(p.AvailableFrom).Format(dateLayout),
	}
}

// CreateProperty adds a DRAFT listing owned by the actor.
func (s *ListingService) CreateProperty(ctx context.Context, actor *models.User, in PropertyInput) (*models.Property, error) {
	if err := policy.CanCreateListing(actor); err != nil {
		return nil, err
	}
	if err := in.check(); err != nil {
		return nil, err
	}
	p := &models.Property{OwnerID: actor.ID, ListingStatus: models.Draft}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, storeErr(err, "property")
	}
	golog.Infof("property %s created by %s", p.ID, actor.ID)
	return p, nil
}

func (s *ListingService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return loadProperty(s.db.WithContext(ctx), id)
}

func loadProperty(tx *gorm.DB, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	err := tx.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Preload("Amenities").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, storeErr(err, "property")
	}
	return &p, nil
}

// ownedProperty loads a property and checks the actor owns it.
func ownedProperty(tx *gorm.DB, actor *models.User, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "property")
	}
	if err := policy.IsPropertyOwner(actor, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProperty replaces the editable fields. Status, verification and the
// view counter are untouched.
func (s *ListingService) UpdateProperty(ctx context.Context, actor *models.User, id uuid.UUID, in PropertyInput) (*models.Property, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownedProperty(tx, actor, id)
		if err != nil {
			return err
		}
		if err := in.apply(p); err != nil {
			return err
		}
		return storeErr(tx.Model(p).Select(
			"title", "description", "property_type", "price_per_month", "currency",
			"address_line1", "address_line2", "city", "state", "postal_code", "region",
			"latitude", "longitude", "bedrooms", "bathrooms", "square_feet",
			"is_furnished", "pets_allowed", "available_from",
		).Updates(p).Error, "property")
	})
	if err != nil {
		return nil, err
	}
	return s.GetProperty(ctx, id)
}

// ChangeStatus moves a listing through its lifecycle. Setting the current
// status again is a no-op.
func (s *ListingService) ChangeStatus(ctx context.Context, actor *models.User, id uuid.UUID, status models.ListingStatus) (*models.Property, error) {
	if !status.Valid() {
		return nil, apperr.NewValidation("listing_status", "unknown listing status %q", status)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownedProperty(tx, actor, id)
		if err != nil {
			return err
		}
		if p.ListingStatus == status {
			return nil
		}
		if !p.ListingStatus.CanTransition(status) {
			return apperr.NewValidation("listing_status", "cannot move a listing from %s to %s", p.ListingStatus, status)
		}
		from := p.ListingStatus
		if err := tx.Model(p).Update("listing_status", status).Error; err != nil {
			return storeErr(err, "property")
		}
		golog.Infof("property %s: %s -> %s", p.ID, from, status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProperty(ctx, id)
}

// DeleteProperty removes the listing. Images, amenities, documents, views,
// saved entries, applications, conversations and reviews go with it through
// the foreign keys.
func (s *ListingService) DeleteProperty(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := ownedProperty(tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(p).Error; err != nil {
			return storeErr(err, "property")
		}
		golog.Infof("property %s deleted by %s", p.ID, actor.ID)
		return nil
	})
}

// ViewProperty returns the listing detail and records the visit. The counter
// and the view row are written together; viewer may be nil for anonymous
// visitors, who are recorded by IP. Listings that are not ACTIVE are only
// visible to their owner and staff.
func (s *ListingService) ViewProperty(ctx context.Context, id uuid.UUID, viewer *models.User, ip string) (*models.Property, error) {
	var (
		p    *models.Property
		note *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadProperty(tx, id); err != nil {
			return err
		}
		isOwner := viewer != nil && viewer.ID == p.OwnerID
		if p.ListingStatus != models.Active && !isOwner && (viewer == nil || !viewer.IsStaff) {
			return apperr.NewNotFound("property", "property not found")
		}

		err = tx.Model(&models.Property{}).Where("id = ?", p.ID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
		if err != nil {
			return storeErr(err, "property")
		}
		p.ViewCount++

		view := &models.PropertyView{PropertyID: p.ID, ViewedAt: s.now()}
		if viewer != nil {
			view.UserID = &viewer.ID
		} else if ip != "" {
			view.IPAddress = &ip
		}
		if err := tx.Create(view).Error; err != nil {
			return storeErr(err, "property view")
		}

		if viewer != nil && !isOwner {
			note, err = s.notifications.Create(ctx, tx, p.OwnerID, models.PropertyViewed,
				"Your property was viewed",
				viewer.FullName+" viewed "+p.Title,
				map[string]interface{}{"propertyId": p.ID.String(), "viewerId": viewer.ID.String()})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Deliver(ctx, note)
	return p, nil
}

type ListFilter struct {
	City         string
	PropertyType models.PropertyType
	MinPrice     decimal.NullDecimal
	MaxPrice     decimal.NullDecimal
	Bedrooms     int
	Limit        int
	Offset       int
}

// ListActive returns ACTIVE listings, newest first.
func (s *ListingService) ListActive(ctx context.Context, f ListFilter) ([]models.Property, error) {
	q := s.db.WithContext(ctx).Where("listing_status = ?", models.Active)
	if f.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.MinPrice.Valid {
		q = q.Where("price_per_month >= ?", f.MinPrice.Decimal)
	}
	if f.MaxPrice.Valid {
		q = q.Where("price_per_month <= ?", f.MaxPrice.Decimal)
	}
	if f.Bedrooms > 0 {
		q = q.Where("bedrooms >= ?", f.Bedrooms)
	}
	var props []models.Property
	err := paginate(q, f.Limit, f.Offset).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Order("created_at DESC").Find(&props).Error
	if err != nil {
		return nil, storeErr(err, "property")
	}
	return props, nil
}

// ListByOwner returns every listing of ownerID regardless of status.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	var props []models.Property
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&props).Error
	if err != nil {
		return nil, storeErr(err, "property")
	}
	return props, nil
}

// VerifyProperty marks a listing as checked by staff. The verifier and time
// of the first verification are kept.
func (s *ListingService) VerifyProperty(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Property, error) {
	if err := policy.IsStaff(actor); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Property
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return storeErr(err, "property")
		}
		if p.IsVerified && p.VerifiedAt != nil {
			return nil
		}
		updates := map[string]interface{}{"is_verified": true, "verified_by_id": actor.ID}
		if p.VerifiedAt == nil {
			updates["verified_at"] = s.now()
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return storeErr(err, "property")
		}
		golog.Infof("property %s verified by %s", p.ID, actor.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProperty(ctx, id)
}

// SaveProperty bookmarks a listing. Saving the same listing twice fails with
// a unique-constraint error.
func (s *ListingService) SaveProperty(ctx context.Context, actor *models.User, propertyID uuid.UUID, notes string) (*models.SavedProperty, error) {
	saved := &models.SavedProperty{UserID: actor.ID, PropertyID: propertyID, Notes: notes, SavedAt: s.now()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Property{}, "id = ?", propertyID).Error; err != nil {
			return storeErr(err, "property")
		}
		return storeErr(tx.Create(saved).Error, "saved property")
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UnsaveProperty removes the bookmark if there is one.
func (s *ListingService) UnsaveProperty(ctx context.Context, actor *models.User, propertyID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", actor.ID, propertyID).
		Delete(&models.SavedProperty{}).Error
	return storeErr(err, "saved property")
}

func (s *ListingService) ListSaved(ctx context.Context, actor *models.User) ([]models.SavedProperty, error) {
	var saved []models.SavedProperty
	err := s.db.WithContext(ctx).Preload("Property").
		Where("user_id = ?", actor.ID).Order("saved_at DESC").Find(&saved).Error
	if err != nil {
		return nil, storeErr(err, "saved property")
	}
	return saved, nil
}
