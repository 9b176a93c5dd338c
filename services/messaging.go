package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartsquare-server/apperr"
	"smartsquare-server/models"
	"smartsquare-server/policy"
)

type MessagingService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

// StartConversation returns the conversation between the actor and otherID
// about propertyID (or about nothing when propertyID is nil), creating it if
// there is none with exactly those two participants.
func (s *MessagingService) StartConversation(ctx context.Context, actor *models.User, otherID uuid.UUID, propertyID *uuid.UUID) (*models.Conversation, error) {
	if otherID == actor.ID {
		return nil, apperr.NewValidation("participants", "you cannot start a conversation with yourself")
	}

	var conv *models.Conversation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var other models.User
		if err := tx.First(&other, "id = ?", otherID).Error; err != nil {
			return storeErr(err, "user")
		}
		if propertyID != nil {
			if err := tx.Select("id").First(&models.Property{}, "id = ?", *propertyID).Error; err != nil {
				return storeErr(err, "property")
			}
		}

		q := tx.Preload("Participants").
			Where("id IN (?)", tx.Table("conversation_participants").Select("conversation_id").Where("user_id = ?", actor.ID))
		if propertyID != nil {
			q = q.Where("property_id = ?", *propertyID)
		} else {
			q = q.Where("property_id IS NULL")
		}
		var candidates []models.Conversation
		if err := q.Find(&candidates).Error; err != nil {
			return storeErr(err, "conversation")
		}
		for i := range candidates {
			if candidates[i].SameParticipants(actor.ID, other.ID) {
				conv = &candidates[i]
				return nil
			}
		}

		now := s.now()
		conv = &models.Conversation{
			PropertyID:    propertyID,
			Participants:  []models.User{*actor, other},
			LastMessageAt: now,
			CreatedAt:     now,
		}
		// Participants already exist; only the join rows are written.
		return storeErr(tx.Omit("Participants.*").Create(conv).Error, "conversation")
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func loadConversation(tx *gorm.DB, actor *models.User, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := tx.Preload("Participants").First(&conv, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "conversation")
	}
	if err := policy.IsParticipant(actor, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func touchConversation(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	err := tx.Model(&models.Conversation{}).Where("id = ?", id).Update("last_message_at", at).Error
	return storeErr(err, "conversation")
}

const previewLength = 100

// SendMessage writes a message to the other participant and moves the
// conversation's LastMessageAt to the send time in the same transaction.
func (s *MessagingService) SendMessage(ctx context.Context, actor *models.User, conversationID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.NewValidation("message_content", "message cannot be empty")
	}

	var (
		msg  *models.Message
		note *models.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := loadConversation(tx, actor, conversationID)
		if err != nil {
			return err
		}
		receiver := conv.OtherParticipant(actor.ID)
		if receiver == nil {
			return apperr.NewValidation("conversation", "messages need a conversation between exactly two people")
		}

		now := s.now()
		msg = &models.Message{
			ConversationID: conv.ID,
			SenderID:       actor.ID,
			ReceiverID:     receiver.ID,
			MessageContent: content,
			SentAt:         now,
		}
		if err := tx.Create(msg).Error; err != nil {
			return storeErr(err, "message")
		}
		if err := touchConversation(tx, conv.ID, now); err != nil {
			return err
		}

		preview := []rune(content)
		if len(preview) > previewLength {
			preview = append(preview[:previewLength], '…')
		}
		note, err = s.notifications.Create(ctx, tx, receiver.ID, models.NewMessage,
			"New message from "+actor.FullName, string(preview),
			map[string]interface{}{
				"conversationId": conv.ID.String(),
				"messageId":      msg.ID.String(),
				"senderId":       actor.ID.String(),
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Deliver(ctx, note)
	return msg, nil
}

// MarkRead flags a message read for its receiver. ReadAt keeps its first
// value and a repeated call changes nothing.
func (s *MessagingService) MarkRead(ctx context.Context, actor *models.User, messageID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, "id = ?", messageID).Error; err != nil {
			return storeErr(err, "message")
		}
		if err := policy.IsReceiver(actor, &msg); err != nil {
			return err
		}
		now := s.now()
		if !msg.MarkRead(now) {
			return nil
		}
		err := tx.Model(&models.Message{}).Where("id = ?", msg.ID).
			Updates(map[string]interface{}{"is_read": true, "read_at": msg.ReadAt}).Error
		if err != nil {
			return storeErr(err, "message")
		}
		return touchConversation(tx, msg.ConversationID, now)
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListConversations returns the actor's conversations, most recent first.
func (s *MessagingService) ListConversations(ctx context.Context, actor *models.User) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).Preload("Participants").
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", actor.ID).
		Order("conversations.last_message_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, storeErr(err, "conversation")
	}
	return convs, nil
}

func (s *MessagingService) ListMessages(ctx context.Context, actor *models.User, conversationID uuid.UUID) ([]models.Message, error) {
	if _, err := loadConversation(s.db.WithContext(ctx), actor, conversationID); err != nil {
		return nil, err
	}
	var msgs []models.Message
	err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("sent_at ASC").Find(&msgs).Error
	if err != nil {
		return nil, storeErr(err, "message")
	}
	return msgs, nil
}

// UnreadMessages counts messages waiting for the actor.
func (s *MessagingService) UnreadMessages(ctx context.Context, actor *models.User) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", actor.ID, false).Count(&count).Error
	if err != nil {
		return 0, storeErr(err, "message")
	}
	return count, nil
}
