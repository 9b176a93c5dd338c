// Package policy decides who may do what. Entities only carry the role and
// ownership fields; the rules that read them live here.
package policy

import (
	"github.com/google/uuid"

	"smartsquare-server/apperr"
	"smartsquare-server/models"
)

// CanCreateListing requires a LANDLORD or BOTH account.
func CanCreateListing(actor *models.User) error {
	if actor == nil || !actor.CanOwnListings() {
		return apperr.NewPermission("only landlords can create listings")
	}
	return nil
}

// CanApply requires a TENANT or BOTH account that does not own the property.
func CanApply(actor *models.User, property *models.Property) error {
	if actor == nil || !actor.CanApply() {
		return apperr.NewPermission("only tenants can apply for properties")
	}
	if property.OwnerID == actor.ID {
		return apperr.NewPermission("you cannot apply to your own property")
	}
	return nil
}

func IsPropertyOwner(actor *models.User, property *models.Property) error {
	if actor == nil || property.OwnerID != actor.ID {
		return apperr.NewPermission("you do not own this property")
	}
	return nil
}

func IsStaff(actor *models.User) error {
	if actor == nil || !actor.IsStaff {
		return apperr.NewPermission("staff access required")
	}
	return nil
}

func IsSelf(actor *models.User, userID uuid.UUID) error {
	if actor == nil || actor.ID != userID {
		return apperr.NewPermission("you can only change your own account")
	}
	return nil
}

// CanRespond lets the owner of the application's property accept or reject it.
func CanRespond(actor *models.User, app *models.PropertyApplication, property *models.Property) error {
	if app.PropertyID != property.ID {
		return apperr.NewPermission("application does not belong to this property")
	}
	return IsPropertyOwner(actor, property)
}

func CanWithdraw(actor *models.User, app *models.PropertyApplication) error {
	if actor == nil || app.TenantID != actor.ID {
		return apperr.NewPermission("only the applicant can withdraw an application")
	}
	return nil
}

// CanViewApplication allows the applicant and the property owner.
func CanViewApplication(actor *models.User, app *models.PropertyApplication, property *models.Property) error {
	if actor != nil && (app.TenantID == actor.ID || property.OwnerID == actor.ID) {
		return nil
	}
	return apperr.NewPermission("you cannot view this application")
}

func IsParticipant(actor *models.User, conv *models.Conversation) error {
	if actor == nil || !conv.HasParticipant(actor.ID) {
		return apperr.NewPermission("you are not part of this conversation")
	}
	return nil
}

func IsReceiver(actor *models.User, msg *models.Message) error {
	if actor == nil || msg.ReceiverID != actor.ID {
		return apperr.NewPermission("only the receiver can mark a message as read")
	}
	return nil
}

func OwnsNotification(actor *models.User, n *models.Notification) error {
	if actor == nil || n.UserID != actor.ID {
		return apperr.NewPermission("not your notification")
	}
	return nil
}

// CanViewVerification allows the submitter and staff.
func CanViewVerification(actor *models.User, v *models.PropertyOwnerVerification) error {
	if actor != nil && (v.UserID == actor.ID || actor.IsStaff) {
		return nil
	}
	return apperr.NewPermission("you cannot view this verification")
}
