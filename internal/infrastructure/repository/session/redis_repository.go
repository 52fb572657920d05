package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "genbot-api/internal/domain/session"
	"genbot-api/internal/infrastructure/cache"
	"genbot-api/internal/utils/platformerrors"
)

const keyPrefix = "session:v1:"

// Repository stores dialog sessions in redis with a TTL and provides the
// per-user lock that serializes concurrent pipeline runs.
type Repository struct {
	cache   *cache.RedisCache
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRepository builds a session repository. ttl bounds both the redis key
// expiration and the session's own expiry timestamp.
func NewRepository(c *cache.RedisCache, ttl time.Duration) *Repository {
	return &Repository{
		cache:   c,
		ttl:     ttl,
		lockTTL: 30 * time.Second,
	}
}

func sessionKey(userID string) string {
	return keyPrefix + userID
}

// Get returns the user's session, or nil when absent or expired. A stored
// session whose expiry timestamp has passed is treated as absent even if the
// redis key still exists.
func (r *Repository) Get(ctx context.Context, userID string) (*domain.Session, error) {
	raw, err := r.cache.Get(ctx, sessionKey(userID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"session.get",
			fmt.Sprintf("failed to load session for user %s", userID),
			err,
		)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"session.decode",
			fmt.Sprintf("failed to decode session for user %s", userID),
			err,
		)
	}

	if sess.Expired(time.Now().UTC()) {
		return nil, nil
	}
	if sess.Payload == nil {
		sess.Payload = map[string]string{}
	}
	return &sess, nil
}

// Save writes the session, refreshing its expiry to now plus the TTL.
func (r *Repository) Save(ctx context.Context, sess *domain.Session) error {
	sess.ExpiresAt = time.Now().UTC().Add(r.ttl)

	raw, err := json.Marshal(sess)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"session.encode",
			fmt.Sprintf("failed to encode session for user %s", sess.UserID),
			err,
		)
	}

	if err := r.cache.Set(ctx, sessionKey(sess.UserID), string(raw), r.ttl); err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeStore,
			"session.save",
			fmt.Sprintf("failed to save session for user %s", sess.UserID),
			err,
		)
	}
	return nil
}

// WithUserLock serializes session read-modify-write cycles for one user.
func (r *Repository) WithUserLock(ctx context.Context, userID string, fn func() error) error {
	return cache.WithLock(r.cache, "session-lock:"+userID, r.lockTTL, fn)
}
