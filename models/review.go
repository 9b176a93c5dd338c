package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewType string

const (
	TenantToLandlord ReviewType = "TENANT_TO_LANDLORD"
	LandlordToTenant ReviewType = "LANDLORD_TO_TENANT"
	PropertyReview   ReviewType = "PROPERTY"
)

func (t ReviewType) Valid() bool {
	switch t {
	case TenantToLandlord, LandlordToTenant, PropertyReview:
		return true
	}
	return false
}

func (t ReviewType) IsUserReview() bool {
	return t == TenantToLandlord || t == LandlordToTenant
}

const (
	MinRating = 1
	MaxRating = 5
)

// Review rates either a user or a property. A reviewer may leave at most one
// review per property and one per reviewee; the two limits are independent.
type Review struct {
	Base
	ReviewerID     uuid.UUID  `json:"reviewerId" gorm:"type:uuid;not null;uniqueIndex:idx_review_reviewer_property;uniqueIndex:idx_review_reviewer_reviewee"`
	Reviewer       *User      `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE"`
	RevieweeID     *uuid.UUID `json:"revieweeId" gorm:"type:uuid;uniqueIndex:idx_review_reviewer_reviewee"`
	Reviewee       *User      `json:"-" gorm:"foreignKey:RevieweeID;constraint:OnDelete:CASCADE"`
	PropertyID     *uuid.UUID `json:"propertyId" gorm:"type:uuid;uniqueIndex:idx_review_reviewer_property"`
	Property       *Property  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Rating         int        `json:"rating" gorm:"not null;check:chk_review_rating,rating >= 1 AND rating <= 5"`
	ReviewText     string     `json:"reviewText" gorm:"type:text;not null"`
	ReviewType     ReviewType `json:"reviewType" gorm:"size:25;not null"`
	IsVerifiedStay bool       `json:"isVerifiedStay" gorm:"not null;default:false"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
