package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const runLockKey = "lock:etl-run"

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

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireRunLock takes the single-writer pipeline lock. The load is designed
// for exactly one writer at a time; the lock guards that assumption across
// hosts. Returns false if another run holds the lock.
func (c *Client) AcquireRunLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, runLockKey, "1", ttl).Result()
}

// ReleaseRunLock releases the pipeline lock
func (c *Client) ReleaseRunLock(ctx context.Context) error {
	return c.rdb.Del(ctx, runLockKey).Err()
}
