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

func TestReviewValidation(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	p := f.activeProperty(landlord)

	cases := []struct {
		name  string
		in    ReviewInput
		field string
	}{
		{"rating too low", ReviewInput{PropertyID: &p.ID, Rating: 0, ReviewText: "meh", ReviewType: models.PropertyReview}, "rating"},
		{"rating too high", ReviewInput{PropertyID: &p.ID, Rating: 6, ReviewText: "wow", ReviewType: models.PropertyReview}, "rating"},
		{"property review without property", ReviewInput{Rating: 4, ReviewText: "nice", ReviewType: models.PropertyReview}, "property"},
		{"user review without reviewee", ReviewInput{Rating: 4, ReviewText: "nice", ReviewType: models.TenantToLandlord}, "reviewee"},
		{"self review", ReviewInput{RevieweeID: &tenant.ID, Rating: 4, ReviewText: "great", ReviewType: models.LandlordToTenant}, "reviewee"},
		{"missing text", ReviewInput{PropertyID: &p.ID, Rating: 4, ReviewType: models.PropertyReview}, "review_text"},
		{"unknown type", ReviewInput{PropertyID: &p.ID, Rating: 4, ReviewText: "ok", ReviewType: "NEIGHBOUR"}, "review_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Reviews.Submit(f.ctx, tenant, tc.in)
			assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.Validation, Field: tc.field})
		})
	}
	assert.Zero(t, f.count(&models.Review{}, "1 = 1"))
}

func TestReviewTargetsMustExist(t *testing.T) {
	f := newFixture(t)
	tenant := f.user("tenant@example.com", models.Tenant)
	missing := uuid.New()

	_, err := f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{PropertyID: &missing, Rating: 3, ReviewText: "?", ReviewType: models.PropertyReview})
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.NotFound, Field: "property"})

	_, err = f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{RevieweeID: &missing, Rating: 3, ReviewText: "?", ReviewType: models.TenantToLandlord})
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.NotFound, Field: "reviewee"})
}

func TestReviewLimitsAreIndependent(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	p := f.activeProperty(landlord)

	_, err := f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{PropertyID: &p.ID, Rating: 4, ReviewText: "Bright and quiet", ReviewType: models.PropertyReview})
	require.NoError(t, err)

	_, err = f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{PropertyID: &p.ID, Rating: 2, ReviewText: "Changed my mind", ReviewType: models.PropertyReview})
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.UniqueConstraint, Field: "property"})

	_, err = f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{RevieweeID: &landlord.ID, Rating: 5, ReviewText: "Responsive landlord", ReviewType: models.TenantToLandlord})
	require.NoError(t, err)

	_, err = f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{RevieweeID: &landlord.ID, Rating: 1, ReviewText: "Again", ReviewType: models.TenantToLandlord})
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.UniqueConstraint, Field: "reviewee"})

	assert.Equal(t, int64(2), f.count(&models.Review{}, "reviewer_id = ?", tenant.ID))
}

func TestVerifiedStay(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	stranger := f.user("stranger@example.com", models.Tenant)
	p := f.activeProperty(landlord)

	app, err := f.svc.Applications.Apply(f.ctx, tenant, applicationInput(p.ID))
	require.NoError(t, err)
	_, err = f.svc.Applications.Respond(f.ctx, landlord, app.ID, RespondInput{Status: models.Accepted})
	require.NoError(t, err)

	stayed, err := f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{PropertyID: &p.ID, Rating: 5, ReviewText: "Lovely", ReviewType: models.PropertyReview})
	require.NoError(t, err)
	assert.True(t, stayed.IsVerifiedStay)

	visited, err := f.svc.Reviews.Submit(f.ctx, stranger, ReviewInput{PropertyID: &p.ID, Rating: 3, ReviewText: "Saw it once", ReviewType: models.PropertyReview})
	require.NoError(t, err)
	assert.False(t, visited.IsVerifiedStay)

	aboutTenant, err := f.svc.Reviews.Submit(f.ctx, landlord, ReviewInput{RevieweeID: &tenant.ID, Rating: 5, ReviewText: "Paid on time", ReviewType: models.LandlordToTenant})
	require.NoError(t, err)
	assert.True(t, aboutTenant.IsVerifiedStay)
}

func TestReviewNotificationsAndSummary(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	tenant := f.user("tenant@example.com", models.Tenant)
	other := f.user("other@example.com", models.Tenant)
	p := f.activeProperty(landlord)

	empty, err := f.svc.Reviews.AverageForProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)

	_, err = f.svc.Reviews.Submit(f.ctx, tenant, ReviewInput{PropertyID: &p.ID, Rating: 4, ReviewText: "Good", ReviewType: models.PropertyReview})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Reviews.Submit(f.ctx, other, ReviewInput{PropertyID: &p.ID, Rating: 5, ReviewText: "Great", ReviewType: models.PropertyReview})
	require.NoError(t, err)

	summary, err := f.svc.Reviews.AverageForProperty(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Count)
	assert.InDelta(t, 4.5, summary.Average, 0.001)

	reviews, err := f.svc.Reviews.ListForProperty(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, other.ID, reviews[0].ReviewerID)
	require.NotNil(t, reviews[0].Reviewer)

	notes := f.notificationsFor(landlord.ID)
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, models.NewReview, n.NotificationType)
	}

	_, err = f.svc.Reviews.Submit(f.ctx, landlord, ReviewInput{RevieweeID: &tenant.ID, Rating: 3, ReviewText: "Fine", ReviewType: models.LandlordToTenant})
	require.NoError(t, err)
	aboutTenant, err := f.svc.Reviews.ListForUser(f.ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, aboutTenant, 1)
	assert.Len(t, f.notificationsFor(tenant.ID), 1)
}

func TestOwnerReviewingOwnPropertyIsNotNotified(t *testing.T) {
	f := newFixture(t)
	landlord := f.user("landlord@example.com", models.Landlord)
	p := f.activeProperty(landlord)

	_, err := f.svc.Reviews.Submit(f.ctx, landlord, ReviewInput{PropertyID: &p.ID, Rating: 5, ReviewText: "Biased", ReviewType: models.PropertyReview})
	require.NoError(t, err)
	assert.Empty(t, f.notificationsFor(landlord.ID))
}
