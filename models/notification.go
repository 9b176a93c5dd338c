package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	ApplicationReceived        NotificationType = "APPLICATION_RECEIVED"
	ApplicationAccepted        NotificationType = "APPLICATION_ACCEPTED"
	ApplicationRejected        NotificationType = "APPLICATION_REJECTED"
	NewMessage                 NotificationType = "NEW_MESSAGE"
	NotifyVerificationApproved NotificationType = "VERIFICATION_APPROVED"
	NotifyVerificationRejected NotificationType = "VERIFICATION_REJECTED"
	NewReview                  NotificationType = "NEW_REVIEW"
	PropertyViewed             NotificationType = "PROPERTY_VIEWED"
	SystemNotification         NotificationType = "SYSTEM"
)

type Notification struct {
	Base
	UserID           uuid.UUID         `json:"userId" gorm:"type:uuid;not null;index"`
	User             *User             `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	NotificationType NotificationType  `json:"notificationType" gorm:"size:30;not null"`
	Title            string            `json:"title" gorm:"size:255;not null"`
	Message          string            `json:"message" gorm:"type:text"`
	Metadata         datatypes.JSONMap `json:"metadata"`
	IsRead           bool              `json:"isRead" gorm:"not null;default:false;index"`
	ReadAt           *time.Time        `json:"readAt"`
	CreatedAt        time.Time         `json:"createdAt" gorm:"index"`
}

// MarkRead stamps ReadAt once; it reports whether anything changed.
func (n *Notification) MarkRead(now time.Time) bool {
	if n.IsRead && n.ReadAt != nil {
		return false
	}
	n.IsRead = true
	if n.ReadAt == nil {
		n.ReadAt = &now
	}
	return true
}
