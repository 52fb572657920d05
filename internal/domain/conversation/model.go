package conversation

import "time"

// Direction indicates whether a message travelled toward or away from the bot.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Status tracks the delivery state recorded with a message.
type Status string

const (
	StatusReceived Status = "received"
	StatusSent     Status = "sent"
)

// MessageType distinguishes the payload shape of a stored message.
type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeImage       MessageType = "image"
	MessageTypeVideo       MessageType = "video"
	MessageTypeInteractive MessageType = "interactive"
)

// Conversation is the durable record of a user's exchange with the bot.
type Conversation struct {
	ID          uint
	PublicID    string
	UserID      string
	DisplayName *string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is a single stored inbound or outbound message.
type Message struct {
	ID                uint
	ConversationID    uint
	PlatformMessageID string
	UserID            string
	Direction         Direction
	Status            Status
	Type              MessageType
	Body              string
	MediaURL          *string
	Caption           *string
	Metadata          map[string]any
	CreatedAt         time.Time
}

// Pagination bounds list queries.
type Pagination struct {
	Page     int
	PageSize int
}
