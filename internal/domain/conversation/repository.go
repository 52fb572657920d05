package conversation

import "context"

// Repository persists conversation metadata.
type Repository interface {
	// GetOrCreate returns the most recently created conversation for the user,
	// creating one when none exists. A non-empty displayName backfills a
	// conversation that was created without one.
	GetOrCreate(ctx context.Context, userID, displayName string) (*Conversation, error)
	List(ctx context.Context, pagination *Pagination) ([]*Conversation, int64, error)
}

// MessageRepository persists individual messages.
type MessageRepository interface {
	// Save inserts the message. The insert is idempotent on the platform
	// message id; created reports whether a new row was written.
	Save(ctx context.Context, msg *Message) (created bool, err error)
	// History returns the user's messages in chronological order, capped at
	// limit entries.
	History(ctx context.Context, userID string, limit int) ([]Message, error)
}
