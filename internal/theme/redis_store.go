package theme

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "gh_lookup:theme:"

// RedisStoreConfig contains configuration for RedisStore.
type RedisStoreConfig struct {
	Client    *redis.Client
	KeyPrefix string
	TTL       time.Duration // 0 keeps preferences forever
}

// RedisStore persists preferences in Redis, one key per session.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a new Redis-based theme store.
func NewRedisStore(cfg RedisStoreConfig) *RedisStore {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	return &RedisStore{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
		ttl:       cfg.TTL,
	}
}

func (s *RedisStore) key(session string) string {
	return s.keyPrefix + session
}

// Load returns the stored theme or ErrNoPreference.
func (s *RedisStore) Load(ctx context.Context, session string) (Theme, error) {
	val, err := s.client.Get(ctx, s.key(session)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoPreference
	}
	if err != nil {
		return "", fmt.Errorf("failed to get theme: %w", err)
	}

	t, err := Parse(val)
	if err != nil {
		return "", fmt.Errorf("stored theme: %w", err)
	}
	return t, nil
}

// Save stores t for session.
func (s *RedisStore) Save(ctx context.Context, session string, t Theme) error {
	if err := s.client.Set(ctx, s.key(session), string(t), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store theme: %w", err)
	}
	return nil
}
