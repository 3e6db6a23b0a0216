package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLRecent  = 30 * time.Second // recent conversation list (refreshed often)
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixRecent = "recent:"
	PrefixUnread = "unread:"
)

// Service Redis cache for the messaging surfaces. All operations degrade to
// no-ops when Redis is unavailable; the durable store stays authoritative.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Recent conversation list cache
	GetRecent(ctx context.Context, userID string, dest interface{}) error
	SetRecent(ctx context.Context, userID string, data interface{}) error
	InvalidateRecent(ctx context.Context, userIDs ...string) error

	// Unread counters
	IncrUnread(ctx context.Context, userID string) error
	ResetUnread(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return redis.Nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetRecent(ctx context.Context, userID string, dest interface{}) error {
	return c.Get(ctx, PrefixRecent+userID, dest)
}

func (c *redisCache) SetRecent(ctx context.Context, userID string, data interface{}) error {
	return c.Set(ctx, PrefixRecent+userID, data, TTLRecent)
}

func (c *redisCache) InvalidateRecent(ctx context.Context, userIDs ...string) error {
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = PrefixRecent + id
	}
	return c.Delete(ctx, keys...)
}

func (c *redisCache) IncrUnread(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, PrefixUnread+userID).Err()
}

func (c *redisCache) ResetUnread(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, PrefixUnread+userID).Err()
}

func (c *redisCache) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if c.client == nil {
		return 0, nil
	}
	n, err := c.client.Get(ctx, PrefixUnread+userID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
