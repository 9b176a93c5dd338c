package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationType string

const (
	IDCard          VerificationType = "ID_CARD"
	Passport        VerificationType = "PASSPORT"
	UtilityBill     VerificationType = "UTILITY_BILL"
	TitleDeed       VerificationType = "TITLE_DEED"
	LandCertificate VerificationType = "LAND_CERTIFICATE"
)

func (t VerificationType) Valid() bool {
	switch t {
	case IDCard, Passport, UtilityBill, TitleDeed, LandCertificate:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
	VerificationExpired  VerificationStatus = "EXPIRED"
)

type PropertyOwnerVerification struct {
	Base
	UserID           uuid.UUID              `json:"userId" gorm:"type:uuid;not null;index"`
	User             *User                  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	VerificationType VerificationType       `json:"verificationType" gorm:"size:20;not null"`
	Status           VerificationStatus     `json:"status" gorm:"size:10;not null;default:PENDING;index"`
	RejectionReason  string                 `json:"rejectionReason" gorm:"type:text"`
	VerifiedByID     *uuid.UUID             `json:"verifiedById" gorm:"type:uuid"`
	VerifiedBy       *User                  `json:"-" gorm:"foreignKey:VerifiedByID;constraint:OnDelete:SET NULL"`
	SubmittedAt      time.Time              `json:"submittedAt" gorm:"index"`
	VerifiedAt       *time.Time             `json:"verifiedAt"`
	ExpiresAt        *time.Time             `json:"expiresAt" gorm:"index"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
	Documents        []VerificationDocument `json:"documents,omitempty" gorm:"foreignKey:VerificationID;constraint:OnDelete:CASCADE"`
}

type VerificationDocument struct {
	Base
	VerificationID uuid.UUID `json:"verificationId" gorm:"type:uuid;not null;index"`
	DocumentType   string    `json:"documentType" gorm:"size:50;not null"`
	DocumentURL    string    `json:"documentUrl" gorm:"not null"`
	DocumentName   string    `json:"documentName" gorm:"size:255;not null"`
	FileSize       int64     `json:"fileSize" gorm:"not null"`
	UploadedAt     time.Time `json:"uploadedAt" gorm:"autoCreateTime"`
}
