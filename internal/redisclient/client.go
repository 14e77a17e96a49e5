package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ClaimAlert marks a low-stock alert as sent for an ingredient, with a TTL.
// Returns true if this caller claimed the alert; false means one was sent
// recently and the caller should stay quiet.
func (c *Client) ClaimAlert(ctx context.Context, ingredientID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lowstock-alert:%s", ingredientID), "1", ttl).Result()
}

// ReleaseAlert clears an alert claim, re-arming the alert for an ingredient.
// Called when stock recovers above threshold.
func (c *Client) ReleaseAlert(ctx context.Context, ingredientID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lowstock-alert:%s", ingredientID)).Err()
}

// CacheReport stores a rendered report payload with a short TTL
func (c *Client) CacheReport(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("report:%s", key), payload, ttl).Err()
}

// GetCachedReport retrieves a cached report payload, nil if absent
func (c *Client) GetCachedReport(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, fmt.Sprintf("report:%s", key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
