package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache wraps a redis client with the lock primitives the pipeline uses.
type RedisCache struct {
	client redis.UniversalClient
	rs     *redsync.Redsync
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Msg("ignoring non-zero DB when using Redis Cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	rs := redsync.New(goredis.NewPool(client))
	return &RedisCache{
		client: client,
		rs:     rs,
	}, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	parts := strings.Split(raw, ",")
	opts := &redis.UniversalOptions{}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "://") {
			parsed, err := redis.ParseURL(part)
			if err != nil {
				return nil, err
			}

			opts.Addrs = append(opts.Addrs, parsed.Addr)

			if opts.Username == "" {
				opts.Username = parsed.Username
			}
			if opts.Password == "" {
				opts.Password = parsed.Password
			}
			if opts.DB == 0 {
				opts.DB = parsed.DB
			}
			if opts.TLSConfig == nil {
				opts.TLSConfig = parsed.TLSConfig
			}
			if opts.DialTimeout == 0 {
				opts.DialTimeout = parsed.DialTimeout
			}
			if opts.PoolSize == 0 {
				opts.PoolSize = parsed.PoolSize
			}
		} else {
			opts.Addrs = append(opts.Addrs, part)
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses provided")
	}

	return opts, nil
}

// Set writes a key with an expiration.
func (r *RedisCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get reads a key. A cache miss returns redis.Nil as-is; callers check with
// errors.Is(err, redis.Nil).
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", redis.Nil
		}
		return "", fmt.Errorf("failed to get value from cache: %w", err)
	}

	return val, nil
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// HealthCheck pings redis.
func (r *RedisCache) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// WithLock runs fn while holding a distributed mutex named lockName.
func WithLock(cache *RedisCache, lockName string, ttl time.Duration, fn func() error) error {
	mutex := cache.rs.NewMutex(lockName, redsync.WithExpiry(ttl))

	if err := mutex.Lock(); err != nil {
		return err
	}

	defer func() {
		if _, err := mutex.Unlock(); err != nil {
			log.Error().Err(err).Str("lock", lockName).Msg("failed to unlock mutex")
		}
	}()

	return fn()
}
