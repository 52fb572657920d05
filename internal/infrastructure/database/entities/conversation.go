package entities

import (
	"time"

	"gorm.io/datatypes"

	"genbot-api/internal/domain/conversation"
)

// Conversation represents the database schema for conversations.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID    string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID      string            `gorm:"type:varchar(64);index:idx_conversation_user_created;not null"`
	DisplayName *string           `gorm:"type:varchar(256)"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// EtoD converts database entity to domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	metadata := map[string]any{}
	if c.Metadata != nil {
		metadata = c.Metadata
	}

	return &conversation.Conversation{
		ID:          c.ID,
		PublicID:    c.PublicID,
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Metadata:    metadata,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:          c.ID,
		PublicID:    c.PublicID,
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Metadata:    c.Metadata,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
