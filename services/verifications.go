package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"gorm.io/gorm"

	"smartsquare-server/apperr"
	"smartsquare-server/blobstore"
	"smartsquare-server/models"
	"smartsquare-server/policy"
)

type VerificationService struct {
	db            *gorm.DB
	blobs         blobstore.Store
	notifications *NotificationService
	validity      time.Duration
	now           func() time.Time
}

// DocumentUpload is one supporting file of a verification request.
type DocumentUpload struct {
	Upload
	DocumentType string
}

// Submit files a PENDING verification with its documents. The files are
// stored first; the request and its document rows are written together.
func (s *VerificationService) Submit(ctx context.Context, actor *models.User, kind models.VerificationType, docs []DocumentUpload) (*models.PropertyOwnerVerification, error) {
	if !kind.Valid() {
		return nil, apperr.NewValidation("verification_type", "unknown verification type %q", kind)
	}
	if len(docs) == 0 {
		return nil, apperr.NewValidation("documents", "at least one document is required")
	}
	for _, d := range docs {
		if err := d.check("documents"); err != nil {
			return nil, err
		}
	}

	now := s.now()
	v := &models.PropertyOwnerVerification{
		UserID:           actor.ID,
		VerificationType: kind,
		Status:           models.VerificationPending,
		SubmittedAt:      now,
	}
	for _, d := range docs {
		url, err := s.blobs.Store(ctx, "verification_documents/"+actor.ID.String(), d.FileName, d.Data, d.ContentType)
		if err != nil {
			return nil, err
		}
		docType := strings.TrimSpace(d.DocumentType)
		if docType == "" {
			docType = string(kind)
		}
		v.Documents = append(v.Documents, models.VerificationDocument{
			DocumentType: docType,
			DocumentURL:  url,
			DocumentName: d.FileName,
			FileSize:     int64(len(d.Data)),
			UploadedAt:   now,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return storeErr(tx.Create(v).Error, "verification")
	})
	if err != nil {
		return nil, err
	}
	golog.Infof("verification %s submitted by %s", v.ID, actor.ID)
	return v, nil
}

func pendingVerification(tx *gorm.DB, id uuid.UUID) (*models.PropertyOwnerVerification, error) {
	var v models.PropertyOwnerVerification
	if err := tx.First(&v, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "verification")
	}
	if v.Status != models.VerificationPending {
		return nil, apperr.NewValidation("status", "verification is already %s", v.Status)
	}
	return &v, nil
}

// Approve accepts a PENDING verification and marks its user verified in the
// same transaction. The approval lasts for the configured validity.
func (s *VerificationService) Approve(ctx context.Context, actor *models.User, id uuid.UUID) (*models.PropertyOwnerVerification, error) {
	if err := policy.IsStaff(actor); err != nil {
		return nil, err
	}
	var (
		v    *models.PropertyOwnerVerification
		note *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if v, err = pendingVerification(tx, id); err != nil {
			return err
		}
		now := s.now()
		expires := now.Add(s.validity)
		v.Status = models.VerificationApproved
		v.VerifiedByID = &actor.ID
		v.VerifiedAt = &now
		v.ExpiresAt = &expires
		err = tx.Model(&models.PropertyOwnerVerification{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
			"status":         v.Status,
			"verified_by_id": actor.ID,
			"verified_at":    now,
			"expires_at":     expires,
		}).Error
		if err != nil {
			return storeErr(err, "verification")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", v.UserID).Update("is_verified", true).Error; err != nil {
			return storeErr(err, "user")
		}

		note, err = s.notifications.Create(ctx, tx, v.UserID, models.NotifyVerificationApproved,
			"Verification approved", "Your account is now verified.",
			map[string]interface{}{"verificationId": v.ID.String()})
		return err
	})
	if err != nil {
		return nil, err
	}
	golog.Infof("verification %s approved by %s", v.ID, actor.ID)
	s.notifications.Deliver(ctx, note)
	return v, nil
}

// Reject turns down a PENDING verification with a reason the user can read.
func (s *VerificationService) Reject(ctx context.Context, actor *models.User, id uuid.UUID, reason string) (*models.PropertyOwnerVerification, error) {
	if err := policy.IsStaff(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.NewValidation("rejection_reason", "a rejection reason is required")
	}
	var (
		v    *models.PropertyOwnerVerification
		note *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if v, err = pendingVerification(tx, id); err != nil {
			return err
		}
		v.Status = models.VerificationRejected
		v.RejectionReason = reason
		v.VerifiedByID = &actor.ID
		err = tx.Model(&models.PropertyOwnerVerification{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
			"status":           v.Status,
			"rejection_reason": reason,
			"verified_by_id":   actor.ID,
		}).Error
		if err != nil {
			return storeErr(err, "verification")
		}

		note, err = s.notifications.Create(ctx, tx, v.UserID, models.NotifyVerificationRejected,
			"Verification rejected", reason,
			map[string]interface{}{"verificationId": v.ID.String()})
		return err
	})
	if err != nil {
		return nil, err
	}
	golog.Infof("verification %s rejected by %s", v.ID, actor.ID)
	s.notifications.Deliver(ctx, note)
	return v, nil
}

// ExpireDue moves APPROVED verifications whose expiry has passed to EXPIRED.
// Users left without a live approval lose their verified flag and get a
// system notification. It returns the number of verifications expired.
func (s *VerificationService) ExpireDue(ctx context.Context) (int, error) {
	now := s.now()
	var (
		due   []models.PropertyOwnerVerification
		notes []*models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("status = ? AND expires_at <= ?", models.VerificationApproved, now).Find(&due).Error
		if err != nil {
			return storeErr(err, "verification")
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(due))
		users := make(map[uuid.UUID]struct{})
		for _, v := range due {
			ids = append(ids, v.ID)
			users[v.UserID] = struct{}{}
		}
		err = tx.Model(&models.PropertyOwnerVerification{}).Where("id IN ?", ids).
			Update("status", models.VerificationExpired).Error
		if err != nil {
			return storeErr(err, "verification")
		}

		for userID := range users {
			var live int64
			err := tx.Model(&models.PropertyOwnerVerification{}).
				Where("user_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)", userID, models.VerificationApproved, now).
				Count(&live).Error
			if err != nil {
				return storeErr(err, "verification")
			}
			if live > 0 {
				continue
			}
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_verified", false).Error; err != nil {
				return storeErr(err, "user")
			}
			note, err := s.notifications.Create(ctx, tx, userID, models.SystemNotification,
				"Verification expired", "Your verification has expired. Submit new documents to stay verified.", nil)
			if err != nil {
				return err
			}
			notes = append(notes, note)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(due) > 0 {
		golog.Infof("expired %d verifications", len(due))
	}
	s.notifications.Deliver(ctx, notes...)
	return len(due), nil
}

func (s *VerificationService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.PropertyOwnerVerification, error) {
	var v models.PropertyOwnerVerification
	if err := s.db.WithContext(ctx).Preload("Documents").First(&v, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "verification")
	}
	if err := policy.CanViewVerification(actor, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VerificationService) ListMine(ctx context.Context, actor *models.User) ([]models.PropertyOwnerVerification, error) {
	var list []models.PropertyOwnerVerification
	err := s.db.WithContext(ctx).Preload("Documents").
		Where("user_id = ?", actor.ID).Order("submitted_at DESC").Find(&list).Error
	if err != nil {
		return nil, storeErr(err, "verification")
	}
	return list, nil
}

// ListPending is the staff review queue, oldest first.
func (s *VerificationService) ListPending(ctx context.Context, actor *models.User) ([]models.PropertyOwnerVerification, error) {
	if err := policy.IsStaff(actor); err != nil {
		return nil, err
	}
	var list []models.PropertyOwnerVerification
	err := s.db.WithContext(ctx).Preload("Documents").
		Where("status = ?", models.VerificationPending).Order("submitted_at ASC").Find(&list).Error
	if err != nil {
		return nil, storeErr(err, "verification")
	}
	return list, nil
}
