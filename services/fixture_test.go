package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"smartsquare-server/blobstore"
	"smartsquare-server/models"
	"smartsquare-server/notify"
	"smartsquare-server/storage/storagetest"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (r *recordingDispatcher) Dispatch(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingDispatcher) types() []models.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.NotificationType
	for _, ev := range r.events {
		out = append(out, ev.Notification.NotificationType)
	}
	return out
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	svc      *Services
	clock    *testClock
	blobs    *blobstore.Memory
	delivery *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		db:       storagetest.NewDB(t),
		clock:    &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		blobs:    blobstore.NewMemory("memory://test"),
		delivery: &recordingDispatcher{},
	}
	f.svc = New(f.db, Options{
		Blobs:                f.blobs,
		Dispatcher:           f.delivery,
		VerificationValidity: 30 * 24 * time.Hour,
		Now:                  f.clock.Now,
	})
	return f
}

// user inserts an account directly; registration is covered on its own.
func (f *fixture) user(email string, role models.UserType) *models.User {
	f.t.Helper()
	u := &models.User{Email: email, FullName: "User " + email, UserType: role, Password: "unused", AllowsNotifications: true}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) staff(email string) *models.User {
	f.t.Helper()
	u := f.user(email, models.Tenant)
	require.NoError(f.t, f.db.Model(u).Update("is_staff", true).Error)
	u.IsStaff = true
	return u
}

func propertyInput() PropertyInput {
	return PropertyInput{
		Title:         "Two bedroom flat in Osu",
		PropertyType:  models.Apartment,
		PricePerMonth: decimal.RequireFromString("2500.00"),
		AddressLine1:  "12 Oxford Street",
		City:          "Accra",
		Bedrooms:      2,
		Bathrooms:     1,
		AvailableFrom: "2025-04-01",
	}
}

func (f *fixture) draftProperty(owner *models.User) *models.Property {
	f.t.Helper()
	p, err := f.svc.Listings.CreateProperty(f.ctx, owner, propertyInput())
	require.NoError(f.t, err)
	return p
}

func (f *fixture) activeProperty(owner *models.User) *models.Property {
	f.t.Helper()
	p := f.draftProperty(owner)
	p, err := f.svc.Listings.ChangeStatus(f.ctx, owner, p.ID, models.Active)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) notificationsFor(userID uuid.UUID) []models.Notification {
	f.t.Helper()
	var notes []models.Notification
	require.NoError(f.t, f.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&notes).Error)
	return notes
}

func (f *fixture) count(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }
