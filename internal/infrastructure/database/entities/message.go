package entities

import (
	"time"

	"gorm.io/datatypes"

	"genbot-api/internal/domain/conversation"
)

// Message represents the database schema for stored messages. The unique
// index on PlatformMessageID is what makes inbound saves idempotent across
// redelivered webhook payloads.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	ConversationID    uint              `gorm:"index;not null"`
	PlatformMessageID string            `gorm:"type:varchar(128);uniqueIndex;not null"`
	UserID            string            `gorm:"type:varchar(64);index:idx_message_user_created;not null"`
	Direction         string            `gorm:"type:varchar(10);not null"`
	Status            string            `gorm:"type:varchar(10);not null"`
	Type              string            `gorm:"type:varchar(12);not null"`
	Body              string            `gorm:"type:text"`
	MediaURL          *string           `gorm:"type:text"`
	Caption           *string           `gorm:"type:text"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts database entity to domain model.
func (m *Message) EtoD() *conversation.Message {
	metadata := map[string]any{}
	if m.Metadata != nil {
		metadata = m.Metadata
	}

	return &conversation.Message{
		ID:                m.ID,
		ConversationID:    m.ConversationID,
		PlatformMessageID: m.PlatformMessageID,
		UserID:            m.UserID,
		Direction:         conversation.Direction(m.Direction),
		Status:            conversation.Status(m.Status),
		Type:              conversation.MessageType(m.Type),
		Body:              m.Body,
		MediaURL:          m.MediaURL,
		Caption:           m.Caption,
		Metadata:          metadata,
		CreatedAt:         m.CreatedAt,
	}
}

// NewSchemaMessage creates a database entity from domain model.
func NewSchemaMessage(m *conversation.Message) *Message {
	return &Message{
		ID:                m.ID,
		ConversationID:    m.ConversationID,
		PlatformMessageID: m.PlatformMessageID,
		UserID:            m.UserID,
		Direction:         string(m.Direction),
		Status:            string(m.Status),
		Type:              string(m.Type),
		Body:              m.Body,
		MediaURL:          m.MediaURL,
		Caption:           m.Caption,
		Metadata:          m.Metadata,
		CreatedAt:         m.CreatedAt,
	}
}
