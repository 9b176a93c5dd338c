package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"gorm.io/gorm"

	"smartsquare-server/models"
	"smartsquare-server/notify"
	"smartsquare-server/policy"
)

// NotificationService is the event sink the other services write to. Records
// are created inside the caller's transaction; external delivery happens
// after commit and never fails the triggering operation.
type NotificationService struct {
	db         *gorm.DB
	dispatcher notify.Dispatcher
	now        func() time.Time
}

// Create stores a notification through tx, or the service's own handle when
// tx is nil.
func (s *NotificationService) Create(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind models.NotificationType,
	title, message string, metadata map[string]interface{}) (*models.Notification, error) {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}
	n := &models.Notification{
		UserID:           userID,
		NotificationType: kind,
		Title:            title,
		Message:          message,
		Metadata:         metadata,
		CreatedAt:        s.now(),
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, storeErr(err, "notification")
	}
	return n, nil
}

// Deliver hands committed notifications to the external channels. Failures
// are logged.
func (s *NotificationService) Deliver(ctx context.Context, notes ...*models.Notification) {
	for _, n := range notes {
		if n == nil {
			continue
		}
		var recipient models.User
		if err := s.db.WithContext(ctx).First(&recipient, "id = ?", n.UserID).Error; err != nil {
			golog.Warnf("notification %s: failed to load recipient %s: %v", n.ID, n.UserID, err)
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, notify.NewEvent(*n, &recipient)); err != nil {
			golog.Warnf("notification %s: delivery failed: %v", n.ID, err)
		}
	}
}

func (s *NotificationService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "notification")
	}
	if err := policy.OwnsNotification(actor, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead flags one notification read. ReadAt keeps its first value.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Notification, error) {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !n.MarkRead(s.now()) {
		return n, nil
	}
	err = s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", n.ID).
		Updates(map[string]interface{}{"is_read": true, "read_at": n.ReadAt}).Error
	if err != nil {
		return nil, storeErr(err, "notification")
	}
	return n, nil
}

// MarkAllRead flags every unread notification of the actor and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *models.User) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": gorm.Expr("COALESCE(read_at, ?)", s.now())})
	if res.Error != nil {
		return 0, storeErr(res.Error, "notification")
	}
	return res.RowsAffected, nil
}

type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (s *NotificationService) List(ctx context.Context, actor *models.User, f NotificationFilter) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", actor.ID)
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notes []models.Notification
	if err := paginate(q, f.Limit, f.Offset).Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, storeErr(err, "notification")
	}
	return notes, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor *models.User) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).Count(&count).Error
	if err != nil {
		return 0, storeErr(err, "notification")
	}
	return count, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return q.Limit(limit).Offset(offset)
}
