package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PropertyType string

const (
	Apartment  PropertyType = "APARTMENT"
	House      PropertyType = "HOUSE"
	Studio     PropertyType = "STUDIO"
	Room       PropertyType = "ROOM"
	Commercial PropertyType = "COMMERCIAL"
	Hostel     PropertyType = "HOSTEL"
)

func (t PropertyType) Valid() bool {
	switch t {
	case Apartment, House, Studio, Room, Commercial, Hostel:
		return true
	}
	return false
}

type ListingStatus string

const (
	Draft    ListingStatus = "DRAFT"
	Active   ListingStatus = "ACTIVE"
	Rented   ListingStatus = "RENTED"
	Inactive ListingStatus = "INACTIVE"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case Draft, Active, Rented, Inactive:
		return true
	}
	return false
}

// CanTransition reports whether a listing may move from s to next.
// ACTIVE is reachable from DRAFT or INACTIVE, RENTED only from ACTIVE and
// INACTIVE from anywhere. Nothing returns to DRAFT.
func (s ListingStatus) CanTransition(next ListingStatus) bool {
	switch next {
	case Active:
		return s == Draft || s == Inactive
	case Rented:
		return s == Active
	case Inactive:
		return true
	}
	return false
}

const DefaultCurrency = "GHS"

type Property struct {
	Base
	OwnerID       uuid.UUID           `json:"ownerId" gorm:"type:uuid;not null;index"`
	Owner         *User               `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Title         string              `json:"title" gorm:"size:255;not null"`
	Description   string              `json:"description" gorm:"type:text"`
	PropertyType  PropertyType        `json:"propertyType" gorm:"size:20;not null"`
	ListingStatus ListingStatus       `json:"listingStatus" gorm:"size:10;not null;default:DRAFT;index"`
	PricePerMonth decimal.Decimal     `json:"pricePerMonth" gorm:"type:decimal(10,2);not null"`
	Currency      string              `json:"currency" gorm:"size:3;not null;default:GHS"`
	AddressLine1  string              `json:"addressLine1" gorm:"size:255;not null"`
	AddressLine2  string              `json:"addressLine2" gorm:"size:255"`
	City          string              `json:"city" gorm:"size:100;not null;index"`
	State         string              `json:"state" gorm:"size:100"`
	PostalCode    string              `json:"postalCode" gorm:"size:20"`
	Region        string              `json:"region" gorm:"size:100"`
	Latitude      decimal.NullDecimal `json:"latitude" gorm:"type:decimal(9,6)"`
	Longitude     decimal.NullDecimal `json:"longitude" gorm:"type:decimal(9,6)"`
	Bedrooms      int                 `json:"bedrooms" gorm:"not null"`
	Bathrooms     int                 `json:"bathrooms" gorm:"not null"`
	SquareFeet    decimal.NullDecimal `json:"squareFeet" gorm:"type:decimal(10,2)"`
	IsFurnished   bool                `json:"isFurnished" gorm:"not null;default:false"`
	PetsAllowed   bool                `json:"petsAllowed" gorm:"not null;default:false"`
	AvailableFrom datatypes.Date      `json:"availableFrom"`
	ViewCount     int                 `json:"viewCount" gorm:"not null;default:0"`
	IsVerified    bool                `json:"isVerified" gorm:"not null;default:false"`
	VerifiedByID  *uuid.UUID          `json:"verifiedById" gorm:"type:uuid"`
	VerifiedBy    *User               `json:"-" gorm:"foreignKey:VerifiedByID;constraint:OnDelete:SET NULL"`
	VerifiedAt    *time.Time          `json:"verifiedAt"`
	CreatedAt     time.Time           `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time           `json:"updatedAt"`

	Images    []PropertyImage    `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Amenities []PropertyAmenity  `json:"amenities,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Documents []PropertyDocument `json:"documents,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

type PropertyImage struct {
	Base
	PropertyID   uuid.UUID `json:"propertyId" gorm:"type:uuid;not null;index"`
	ImageURL     string    `json:"imageUrl" gorm:"not null"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	DisplayOrder int       `json:"displayOrder" gorm:"not null;default:0"`
	IsPrimary    bool      `json:"isPrimary" gorm:"not null;default:false"`
	Caption      string    `json:"caption" gorm:"size:255"`
	UploadedAt   time.Time `json:"uploadedAt" gorm:"autoCreateTime"`
}

type AmenityCategory string

const (
	AmenityBasic   AmenityCategory = "BASIC"
	AmenitySafety  AmenityCategory = "SAFETY"
	AmenityKitchen AmenityCategory = "KITCHEN"
	AmenityOutdoor AmenityCategory = "OUTDOOR"
)

func (c AmenityCategory) Valid() bool {
	switch c {
	case AmenityBasic, AmenitySafety, AmenityKitchen, AmenityOutdoor:
		return true
	}
	return false
}

type PropertyAmenity struct {
	Base
	PropertyID      uuid.UUID       `json:"propertyId" gorm:"type:uuid;not null;index"`
	AmenityName     string          `json:"amenityName" gorm:"size:100;not null"`
	AmenityCategory AmenityCategory `json:"amenityCategory" gorm:"size:20;not null"`
}

type PropertyDocumentType string

const (
	DocTitleDeed        PropertyDocumentType = "TITLE_DEED"
	DocRentalAgreement  PropertyDocumentType = "RENTAL_AGREEMENT"
	DocInspectionReport PropertyDocumentType = "INSPECTION_REPORT"
	DocOther            PropertyDocumentType = "OTHER"
)

func (t PropertyDocumentType) Valid() bool {
	switch t {
	case DocTitleDeed, DocRentalAgreement, DocInspectionReport, DocOther:
		return true
	}
	return false
}

type PropertyDocument struct {
	Base
	PropertyID                uuid.UUID            `json:"propertyId" gorm:"type:uuid;not null;index"`
	DocumentType              PropertyDocumentType `json:"documentType" gorm:"size:20;not null"`
	DocumentURL               string               `json:"documentUrl" gorm:"not null"`
	DocumentName              string               `json:"documentName" gorm:"size:255;not null"`
	IsRequiredForVerification bool                 `json:"isRequiredForVerification" gorm:"not null;default:false"`
	UploadedAt                time.Time            `json:"uploadedAt" gorm:"autoCreateTime"`
}

// PropertyView is one detail-page visit, by a known user or an anonymous IP.
type PropertyView struct {
	Base
	PropertyID uuid.UUID  `json:"propertyId" gorm:"type:uuid;not null;index"`
	Property   *Property  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID     *uuid.UUID `json:"userId" gorm:"type:uuid;index"`
	User       *User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	IPAddress  *string    `json:"ipAddress" gorm:"size:45"`
	ViewedAt   time.Time  `json:"viewedAt"`
}

type SavedProperty struct {
	Base
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_property"`
	User       *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PropertyID uuid.UUID `json:"propertyId" gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_property"`
	Property   *Property `json:"property,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Notes      string    `json:"notes" gorm:"type:text"`
	SavedAt    time.Time `json:"savedAt"`
}
