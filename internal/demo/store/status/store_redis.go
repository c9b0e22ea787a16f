package status

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"custodian/internal/demo/models"
)

const defaultRedisKey = "custodian:demo:status"

// RedisStore keeps the status log in a Redis list so that every instance
// behind a load balancer serves the same progress.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey overrides the list key.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewRedisStore constructs a Redis-backed status log.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: defaultRedisKey}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("reset status log: %w", err)
	}
	return nil
}

// Append uses RPUSH, which is atomic, so no read-modify-write is needed.
func (s *RedisStore) Append(ctx context.Context, event models.StatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("append status event: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.StatusEvent, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list status log: %w", err)
	}
	events := make([]models.StatusEvent, 0, len(raw))
	for _, item := range raw {
		var event models.StatusEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("decode status event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}
