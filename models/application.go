// models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	Pending   ApplicationStatus = "PENDING"
	Accepted  ApplicationStatus = "ACCEPTED"
	Rejected  ApplicationStatus = "REJECTED"
	Withdrawn ApplicationStatus = "WITHDRAWN"
)

// PropertyApplication is a tenant's request to rent a property. The
// (property, tenant, status) triple is unique, which blocks a second PENDING
// application but allows a new one once the first has been resolved.
type PropertyApplication struct {
	Base
	PropertyID          uuid.UUID         `json:"propertyId" gorm:"type:uuid;not null;uniqueIndex:idx_application_triple"`
	Property            *Property         `json:"property,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	TenantID            uuid.UUID         `json:"tenantId" gorm:"type:uuid;not null;uniqueIndex:idx_application_triple"`
	Tenant              *User             `json:"tenant,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Status              ApplicationStatus `json:"status" gorm:"size:10;not null;default:PENDING;uniqueIndex:idx_application_triple"`
	Message             string            `json:"message" gorm:"type:text;not null"`
	LandlordResponse    string            `json:"landlordResponse" gorm:"type:text"`
	MoveInDate          datatypes.Date    `json:"moveInDate"`
	LeaseDurationMonths int               `json:"leaseDurationMonths" gorm:"not null"`
	AppliedAt           time.Time         `json:"appliedAt" gorm:"index"`
	RespondedAt         *time.Time        `json:"respondedAt"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// SetStatus moves the application to status and stamps RespondedAt the
// first time it leaves PENDING. Later changes never touch RespondedAt.
func (a *PropertyApplication) SetStatus(status ApplicationStatus, now time.Time) {
	if a.Status == Pending && status != Pending && a.RespondedAt == nil {
		a.RespondedAt = &now
	}
	a.Status = status
}
