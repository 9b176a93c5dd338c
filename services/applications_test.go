package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsquare-server/apperr"
	"smartsquare-server/models"
)

func applicationInput(propertyID uuid.UUID) ApplicationInput {
	return ApplicationInput{
		PropertyID:          propertyID,
		Message:             "I work nearby and can move in next month.",
		MoveInDate:          "2025-04-01",
		LeaseDurationMonths: 12,
	}
}

func TestApplicationLifecycle(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	p := f.activeProperty(landlord)

	app, err := f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	require.NoError(t, err)
	assert.Equal(t, models.Pending, app.Status)
	assert.Nil(t, app.RespondedAt)

	_, err = f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	assert.ErrorIs(t, err, apperr.ErrUniqueConstraint)

	f.clock.Advance(time.Hour)
	accepted, err := f.svc.Applications.Respond(f.ctx, landlord, app.ID, RespondInput{Status: models.Accepted, LandlordResponse: "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, models.Accepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)
	assert.True(t, f.clock.Now().Equal(*accepted.RespondedAt))

	notes := f.notificationsFor(tenant.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.ApplicationAccepted, notes[0].NotificationType)
	assert.Equal(t, app.ID.String(), notes[0].Metadata["applicationId"])

	again, err := f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	require.NoError(t, err)
	assert.Equal(t, models.Pending, again.Status)
	assert.NotEqual(t, app.ID, again.ID)

	assert.Equal(t, []models.NotificationType{
		models.ApplicationReceived,
		models.ApplicationAccepted,
		models.ApplicationReceived,
	}, f.delivery.types())
}

func TestRespondedAtIsStampedOnce(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	p := f.activeProperty(landlord)
	app, err := f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	rejected, err := f.svc.Applications.Respond(f.ctx, landlord, app.ID, RespondInput{Status: models.Rejected})
	require.NoError(t, err)
	first := *rejected.RespondedAt

	f.clock.Advance(time.Hour)
	accepted, err := f.svc.Applications.Respond(f.ctx, landlord, app.ID, RespondInput{Status: models.Accepted})
	require.NoError(t, err)
	assert.True(t, first.Equal(*accepted.RespondedAt))

	stored, err := f.svc.Applications.Get(f.ctx, tenant, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Accepted, stored.Status)
	assert.True(t, first.Equal(*stored.RespondedAt))

	types := []models.NotificationType{}
	for _, n := range f.notificationsFor(tenant.ID) {
		types = append(types, n.NotificationType)
	}
	assert.Equal(t, []models.NotificationType{models.ApplicationRejected, models.ApplicationAccepted}, types)
}

func TestRespondValidation(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	p := f.activeProperty(landlord)
	app, err := f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	require.NoError(t, err)

	_, err = f.svc.Applications.Respond(f.ctx, landlord, app.ID, RespondInput{Status: models.Withdrawn})
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.Validation, Field: "status"})

	_, err = f.svc.Applications.Respond(f.ctx, tenant, app.ID, RespondInput{Status: models.Accepted})
	assert.ErrorIs(t, err, apperr.ErrPermission)

	_, err = f.svc.Applications.Respond(f.ctx, landlord, uuid.New(), RespondInput{Status: models.Accepted})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Applications.Withdraw(f.ctx, tenant, app.ID)
	require.NoError(t, err)
	_, err = f.svc.Applications.Respond(f.ctx, landlord, app.ID, RespondInput{Status: models.Accepted})
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.Validation, Field: "status"})
}

func TestApplyRules(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	both := f.user("both@example.com", models.Both)
	active := f.activeProperty(landlord)
	draft := f.draftProperty(landlord)
	own := f.activeProperty(both)

	_, err := f.svc.Applications.Apply(f.ctx, landlord, applicationInput(own.ID))
	assert.ErrorIs(t, err, apperr.ErrPermission, "landlord-only accounts cannot apply")

	_, err = f.svc.Applications.Apply(f.ctx, both, applicationInput(own.ID))
	assert.ErrorIs(t, err, apperr.ErrPermission, "owners cannot apply to their own listing")

	_, err = f.svc.Applications.Apply(f.ctx, both, applicationInput(draft.ID))
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.Validation, Field: "property"})

	_, err = f.svc.Applications.Apply(f.ctx, both, applicationInput(uuid.New()))
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.NotFound, Field: "property"})

	in := applicationInput(active.ID)
	in.LeaseDurationMonths = 0
	_, err = f.svc.Applications.Apply(f.ctx, both, in)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.Validation, Field: "lease_duration_months"})

	_, err = f.svc.Applications.Apply(f.ctx, both, applicationInput(active.ID))
	assert.NoError(t, err)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	p := f.activeProperty(landlord)
	app, err := f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	require.NoError(t, err)

	_, err = f.svc.Applications.Withdraw(f.ctx, landlord, app.ID)
	assert.ErrorIs(t, err, apperr.ErrPermission)

	withdrawn, err := f.svc.Applications.Withdraw(f.ctx, tenant, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Withdrawn, withdrawn.Status)
	assert.NotNil(t, withdrawn.RespondedAt)

	_, err = f.svc.Applications.Withdraw(f.ctx, tenant, app.ID)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.Validation, Field: "status"})
}

func TestApplicationVisibility(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	stranger := f.user("stranger@example.com", models.Tenant)
	p := f.activeProperty(landlord)
	app, err := f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	require.NoError(t, err)

	_, err = f.svc.Applications.Get(f.ctx, stranger, app.ID)
	assert.ErrorIs(t, err, apperr.ErrPermission)

	got, err := f.svc.Applications.Get(f.ctx, landlord, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Tenant)
	assert.Equal(t, tenant.ID, got.Tenant.ID)

	mine, err := f.svc.Applications.ListForTenant(f.ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	forProperty, err := f.svc.Applications.ListForProperty(f.ctx, landlord, p.ID)
	require.NoError(t, err)
	assert.Len(t, forProperty, 1)

	_, err = f.svc.Applications.ListForProperty(f.ctx, tenant, p.ID)
	assert.ErrorIs(t, err, apperr.ErrPermission)
}
