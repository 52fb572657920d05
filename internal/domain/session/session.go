package session

import (
	"context"
	"time"
)

// Step identifies the dialog state a user is in.
type Step string

const (
	StepWelcome    Step = "welcome"
	StepMenu       Step = "menu_selection"
	StepImageInput Step = "image_input"
	StepVideoInput Step = "video_input"
	StepInfoInput  Step = "info_input"
)

// Session holds the per-user dialog state between messages.
type Session struct {
	UserID    string            `json:"user_id"`
	Step      Step              `json:"step"`
	Payload   map[string]string `json:"payload"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// New synthesizes the default session for a user with no stored state.
func New(userID string, ttl time.Duration) *Session {
	return &Session{
		UserID:    userID,
		Step:      StepWelcome,
		Payload:   map[string]string{},
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
}

// Expired reports whether the session's expiry timestamp has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store persists sessions with a TTL.
type Store interface {
	// Get returns the user's session, or nil when absent or expired.
	Get(ctx context.Context, userID string) (*Session, error)
	// Save writes the session and refreshes its expiry.
	Save(ctx context.Context, sess *Session) error
}

// Locker serializes session read-modify-write cycles per user.
type Locker interface {
	WithUserLock(ctx context.Context, userID string, fn func() error) error
}
