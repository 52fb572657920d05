package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSynthesizesWelcomeState(t *testing.T) {
	sess := New("15551234567", 30*time.Minute)

	assert.Equal(t, "15551234567", sess.UserID)
	assert.Equal(t, StepWelcome, sess.Step)
	assert.NotNil(t, sess.Payload)
	assert.Empty(t, sess.Payload)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), sess.ExpiresAt, 2*time.Second)
}

func TestExpired(t *testing.T) {
	now := time.Now().UTC()
	sess := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, sess.Expired(now))
	assert.True(t, sess.Expired(now.Add(time.Minute)))
	assert.True(t, sess.Expired(now.Add(2*time.Minute)))
}
