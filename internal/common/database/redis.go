// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"finda-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the shared Redis connection backing the product cache.
// Several worker-manager replicas share it, so a search cached by one
// replica is served by the others until its TTL lapses.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a Redis client. The connection is established lazily; call Ping to verify it.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		// Cache reads sit on the search path; fail fast and treat as a miss.
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
