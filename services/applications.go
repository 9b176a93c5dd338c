package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smartsquare-server/apperr"
	"smartsquare-server/models"
	"smartsquare-server/policy"
)

type ApplicationService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

type ApplicationInput struct {
	PropertyID          uuid.UUID `json:"propertyId" validate:"required"`
	Message             string    `json:"message" validate:"required"`
	MoveInDate          string    `json:"moveInDate" validate:"required,datetime=2006-01-02"`
	LeaseDurationMonths int       `json:"leaseDurationMonths" validate:"required,min=1,max=120"`
}

// Apply submits a PENDING application for an ACTIVE listing. A second
// application for the same listing in the same status is rejected by the
// unique (property, tenant, status) index.
func (s *ApplicationService) Apply(ctx context.Context, actor *models.User, in ApplicationInput) (*models.PropertyApplication, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	moveIn, err := parseDate("move_in_date", in.MoveInDate)
	if err != nil {
		return nil, err
	}

	var (
		app  *models.PropertyApplication
		note *models.Notification
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, "id = ?", in.PropertyID).Error; err != nil {
			return storeErr(err, "property")
		}
		if err := policy.CanApply(actor, &property); err != nil {
			return err
		}
		if property.ListingStatus != models.Active {
			return apperr.NewValidation("property", "property is not accepting applications")
		}

		now := s.now()
		app = &models.PropertyApplication{
			PropertyID:          property.ID,
			TenantID:            actor.ID,
			Status:              models.Pending,
			Message:             in.Message,
			MoveInDate:          datatypes.Date(moveIn),
			LeaseDurationMonths: in.LeaseDurationMonths,
			AppliedAt:           now,
		}
		if err := tx.Create(app).Error; err != nil {
			return storeErr(err, "application")
		}

		note, err = s.notifications.Create(ctx, tx, property.OwnerID, models.ApplicationReceived,
			"New rental application",
			actor.FullName+" applied for "+property.Title,
			map[string]interface{}{
				"applicationId": app.ID.String(),
				"propertyId":    property.ID.String(),
				"tenantId":      actor.ID.String(),
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	golog.Infof("application %s submitted by %s for property %s", app.ID, actor.ID, app.PropertyID)
	s.notifications.Deliver(ctx, note)
	return app, nil
}

type RespondInput struct {
	Status           models.ApplicationStatus `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
	LandlordResponse string                   `json:"landlordResponse"`
}

// Respond lets the property owner accept or reject an application.
// RespondedAt is stamped on the first move away from PENDING and kept after.
func (s *ApplicationService) Respond(ctx context.Context, actor *models.User, id uuid.UUID, in RespondInput) (*models.PropertyApplication, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		app  models.PropertyApplication
		note *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Property").First(&app, "id = ?", id).Error; err != nil {
			return storeErr(err, "application")
		}
		if err := policy.CanRespond(actor, &app, app.Property); err != nil {
			return err
		}
		if app.Status == models.Withdrawn {
			return apperr.NewValidation("status", "application was withdrawn")
		}

		previous := app.Status
		app.SetStatus(in.Status, s.now())
		app.LandlordResponse = in.LandlordResponse
		err := tx.Model(&models.PropertyApplication{}).Where("id = ?", app.ID).Updates(map[string]interface{}{
			"status":            app.Status,
			"landlord_response": app.LandlordResponse,
			"responded_at":      app.RespondedAt,
		}).Error
		if err != nil {
			return storeErr(err, "application")
		}
		if previous == app.Status {
			return nil
		}

		kind, title := models.ApplicationAccepted, "Application accepted"
		if app.Status == models.Rejected {
			kind, title = models.ApplicationRejected, "Application rejected"
		}
		note, err = s.notifications.Create(ctx, tx, app.TenantID, kind, title,
			"Your application for "+app.Property.Title+" was "+string(app.Status),
			map[string]interface{}{
				"applicationId": app.ID.String(),
				"propertyId":    app.PropertyID.String(),
			})
		if err != nil {
			return err
		}
		golog.Infof("application %s: %s -> %s", app.ID, previous, app.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Deliver(ctx, note)
	return &app, nil
}

// Withdraw is the applicant cancelling a PENDING application.
func (s *ApplicationService) Withdraw(ctx context.Context, actor *models.User, id uuid.UUID) (*models.PropertyApplication, error) {
	var app models.PropertyApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", id).Error; err != nil {
			return storeErr(err, "application")
		}
		if err := policy.CanWithdraw(actor, &app); err != nil {
			return err
		}
		if app.Status != models.Pending {
			return apperr.NewValidation("status", "only pending applications can be withdrawn")
		}
		app.SetStatus(models.Withdrawn, s.now())
		err := tx.Model(&models.PropertyApplication{}).Where("id = ?", app.ID).Updates(map[string]interface{}{
			"status":       app.Status,
			"responded_at": app.RespondedAt,
		}).Error
		return storeErr(err, "application")
	})
	if err != nil {
		return nil, err
	}
	golog.Infof("application %s withdrawn", app.ID)
	return &app, nil
}

// Get is open to the applicant and the property owner.
func (s *ApplicationService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.PropertyApplication, error) {
	var app models.PropertyApplication
	if err := s.db.WithContext(ctx).Preload("Property").Preload("Tenant").First(&app, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "application")
	}
	if err := policy.CanViewApplication(actor, &app, app.Property); err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *ApplicationService) ListForTenant(ctx context.Context, actor *models.User) ([]models.PropertyApplication, error) {
	var apps []models.PropertyApplication
	err := s.db.WithContext(ctx).Preload("Property").
		Where("tenant_id = ?", actor.ID).Order("applied_at DESC").Find(&apps).Error
	if err != nil {
		return nil, storeErr(err, "application")
	}
	return apps, nil
}

// ListForProperty returns the applications of one listing to its owner.
func (s *ApplicationService) ListForProperty(ctx context.Context, actor *models.User, propertyID uuid.UUID) ([]models.PropertyApplication, error) {
	if _, err := ownedProperty(s.db.WithContext(ctx), actor, propertyID); err != nil {
		return nil, err
	}
	var apps []models.PropertyApplication
	err := s.db.WithContext(ctx).Preload("Tenant").
		Where("property_id = ?", propertyID).Order("applied_at DESC").Find(&apps).Error
	if err != nil {
		return nil, storeErr(err, "application")
	}
	return apps, nil
}
