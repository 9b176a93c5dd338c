package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"gorm.io/gorm"

	"smartsquare-server/apperr"
	"smartsquare-server/models"
)

type ReviewService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

type ReviewInput struct {
	RevieweeID *uuid.UUID        `json:"revieweeId"`
	PropertyID *uuid.UUID        `json:"propertyId"`
	Rating     int               `json:"rating"`
	ReviewText string            `json:"reviewText" validate:"required"`
	ReviewType models.ReviewType `json:"reviewType" validate:"required,oneof=TENANT_TO_LANDLORD LANDLORD_TO_TENANT PROPERTY"`
}

// check enforces the rules that the schema does not: property reviews name a
// property, user reviews name a reviewee and nobody reviews themselves.
func (in ReviewInput) check(reviewer uuid.UUID) error {
	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return apperr.NewValidation("rating", "rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	if err := validateInput(in); err != nil {
		return err
	}
	if in.ReviewType == models.PropertyReview && in.PropertyID == nil {
		return apperr.NewValidation("property", "property reviews must have a property specified")
	}
	if in.ReviewType.IsUserReview() && in.RevieweeID == nil {
		return apperr.NewValidation("reviewee", "user reviews must have a reviewee specified")
	}
	if in.RevieweeID != nil && *in.RevieweeID == reviewer {
		return apperr.NewValidation("reviewee", "you cannot review yourself")
	}
	return nil
}

// Submit stores a review. A reviewer gets one review per property and one per
// reviewee; the two limits are enforced separately.
func (s *ReviewService) Submit(ctx context.Context, actor *models.User, in ReviewInput) (*models.Review, error) {
	if err := in.check(actor.ID); err != nil {
		return nil, err
	}

	var (
		review *models.Review
		note   *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			property *models.Property
			reviewee *models.User
		)
		if in.PropertyID != nil {
			property = &models.Property{}
			if err := tx.First(property, "id = ?", *in.PropertyID).Error; err != nil {
				return storeErr(err, "property")
			}
		}
		if in.RevieweeID != nil {
			reviewee = &models.User{}
			if err := tx.First(reviewee, "id = ?", *in.RevieweeID).Error; err != nil {
				return storeErr(err, "reviewee")
			}
		}

		stayed, err := verifiedStay(tx, actor.ID, in, property)
		if err != nil {
			return err
		}
		now := s.now()
		review = &models.Review{
			ReviewerID:     actor.ID,
			RevieweeID:     in.RevieweeID,
			PropertyID:     in.PropertyID,
			Rating:         in.Rating,
			ReviewText:     in.ReviewText,
			ReviewType:     in.ReviewType,
			IsVerifiedStay: stayed,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(review).Error; err != nil {
			return storeErr(err, "review")
		}

		recipient := uuid.Nil
		subject := ""
		switch {
		case reviewee != nil:
			recipient, subject = reviewee.ID, "you"
		case property != nil && property.OwnerID != actor.ID:
			recipient, subject = property.OwnerID, property.Title
		}
		if recipient == uuid.Nil {
			return nil
		}
		note, err = s.notifications.Create(ctx, tx, recipient, models.NewReview, "New review",
			fmt.Sprintf("%s rated %s %d/5", actor.FullName, subject, review.Rating),
			map[string]interface{}{"reviewId": review.ID.String(), "reviewerId": actor.ID.String()})
		return err
	})
	if err != nil {
		return nil, err
	}
	golog.Infof("review %s (%s) submitted by %s", review.ID, review.ReviewType, actor.ID)
	s.notifications.Deliver(ctx, note)
	return review, nil
}

// verifiedStay reports whether an ACCEPTED application backs the review: the
// reviewer rented the property, rented from the reviewee, or (for landlords)
// the reviewee rented from the reviewer.
func verifiedStay(tx *gorm.DB, reviewerID uuid.UUID, in ReviewInput, property *models.Property) (bool, error) {
	q := tx.Model(&models.PropertyApplication{}).
		Joins("JOIN properties ON properties.id = property_applications.property_id").
		Where("property_applications.status = ?", models.Accepted)
	switch in.ReviewType {
	case models.PropertyReview:
		if property == nil {
			return false, nil
		}
		q = q.Where("property_applications.tenant_id = ? AND property_applications.property_id = ?", reviewerID, property.ID)
	case models.TenantToLandlord:
		q = q.Where("property_applications.tenant_id = ? AND properties.owner_id = ?", reviewerID, *in.RevieweeID)
	case models.LandlordToTenant:
		q = q.Where("property_applications.tenant_id = ? AND properties.owner_id = ?", *in.RevieweeID, reviewerID)
	default:
		return false, nil
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, storeErr(err, "application")
	}
	return count > 0, nil
}

func (s *ReviewService) ListForProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Preload("Reviewer").
		Where("property_id = ?", propertyID).Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return nil, storeErr(err, "review")
	}
	return reviews, nil
}

func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Preload("Reviewer").
		Where("reviewee_id = ?", userID).Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return nil, storeErr(err, "review")
	}
	return reviews, nil
}

// RatingSummary is the mean rating and the number of reviews behind it.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

func (s *ReviewService) AverageForProperty(ctx context.Context, propertyID uuid.UUID) (RatingSummary, error) {
	var summary RatingSummary
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("property_id = ?", propertyID).Scan(&summary).Error
	if err != nil {
		return RatingSummary{}, storeErr(err, "review")
	}
	return summary, nil
}
