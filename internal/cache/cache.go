package cache

// Package cache provides a shared, lazily-connected Redis client used for
// best-effort read-through caching. All methods degrade gracefully: a nil
// client or an unreachable Redis never fails the caller, so store operations
// succeed with or without the cache.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"itemapi/internal/config"
	"itemapi/internal/model"
)

// Client wraps one process-wide Redis connection pool. Construct it once at
// startup and tear it down with Close on shutdown.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds a client from config without dialing; the pool connects on
// first use.
func New(cfg config.RedisConfig) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{rdb: rdb, ttl: ttl}
}

// Connect verifies connectivity with a ping. Callers may treat a failure as
// non-fatal and keep the client; later operations stay best-effort.
func (c *Client) Connect(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func itemKey(id int64) string {
	return fmt.Sprintf("item:%d", id)
}

// GetItem returns a cached item. A miss, an unreachable Redis, and a nil
// client all report ok=false.
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var item model.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, false
	}
	return &item, true
}

// SetItem stores an item best-effort.
func (c *Client) SetItem(ctx context.Context, item *model.Item) {
	if c == nil || c.rdb == nil || item == nil {
		return
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, itemKey(item.ID), raw, c.ttl).Err()
}

// InvalidateItem drops the cached entry after a mutation.
func (c *Client) InvalidateItem(ctx context.Context, id int64) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, itemKey(id)).Err()
}
