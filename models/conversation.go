package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Base
	PropertyID    *uuid.UUID `json:"propertyId" gorm:"type:uuid;index"`
	Property      *Property  `json:"property,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Participants  []User     `json:"participants" gorm:"many2many:conversation_participants;constraint:OnDelete:CASCADE"`
	LastMessageAt time.Time  `json:"lastMessageAt" gorm:"index"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// OtherParticipant returns the participant that is not userID in a
// two-party conversation. It returns nil if the conversation does not have
// exactly two participants or userID is not one of them.
func (c *Conversation) OtherParticipant(userID uuid.UUID) *User {
	if len(c.Participants) != 2 || !c.HasParticipant(userID) {
		return nil
	}
	for i := range c.Participants {
		if c.Participants[i].ID != userID {
			return &c.Participants[i]
		}
	}
	return nil
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// SameParticipants reports whether the participant set equals ids exactly.
func (c *Conversation) SameParticipants(ids ...uuid.UUID) bool {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	if len(want) != len(c.Participants) {
		return false
	}
	for _, p := range c.Participants {
		if _, ok := want[p.ID]; !ok {
			return false
		}
	}
	return true
}

type Message struct {
	Base
	ConversationID uuid.UUID     `json:"conversationId" gorm:"type:uuid;not null;index"`
	Conversation   *Conversation `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SenderID       uuid.UUID     `json:"senderId" gorm:"type:uuid;not null;index"`
	Sender         *User         `json:"-" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	ReceiverID     uuid.UUID     `json:"receiverId" gorm:"type:uuid;not null;index"`
	Receiver       *User         `json:"-" gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
	MessageContent string        `json:"messageContent" gorm:"type:text;not null"`
	IsRead         bool          `json:"isRead" gorm:"not null;default:false"`
	ReadAt         *time.Time    `json:"readAt"`
	SentAt         time.Time     `json:"sentAt" gorm:"index"`
}

// MarkRead flags the message as read. ReadAt is stamped on the first call
// only; it reports whether anything changed.
func (m *Message) MarkRead(now time.Time) bool {
	if m.IsRead && m.ReadAt != nil {
		return false
	}
	m.IsRead = true
	if m.ReadAt == nil {
		m.ReadAt = &now
	}
	return true
}
