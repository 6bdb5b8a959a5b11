package tabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "console:tabs:"

// RedisStore persists snapshots in Redis, one key per user. A zero TTL
// keeps snapshots until logout clears them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

// Load implements Store.Load.
func (s *RedisStore) Load(ctx context.Context, userID string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, redisKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot key: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	return &snap, nil
}

// Save implements Store.Save.
func (s *RedisStore) Save(ctx context.Context, userID string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot key: %w", err)
	}
	return nil
}

// Clear implements Store.Clear.
func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot key: %w", err)
	}
	return nil
}
