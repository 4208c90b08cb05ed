package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client backing the snapshot cache and the idle-key
// expiry signal.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client from a connection URL. The startup ping
// is bounded so a misconfigured address fails fast instead of hanging the
// server boot.
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewClientFromPool wraps an existing redis.Client for use in tests.
func NewClientFromPool(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// EnableExpiryNotifications turns on keyspace expiry events ("Ex"), which
// the inactivity collector's idle-key wakeup relies on. Without it, idle
// lobbies are still reaped, just only on the cron sweep.
func (c *Client) EnableExpiryNotifications(ctx context.Context) error {
	return c.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}
