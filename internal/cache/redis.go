// Package cache provides the Redis access layer: sessions, verified
// token cache and rate limit buckets.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PoolOptions sizes the client pool. Zero values keep go-redis defaults.
type PoolOptions struct {
	PoolSize     int
	MinIdleConns int
}

// Cache wraps a Redis client with the key layouts this service uses.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, connects and pings.
func New(ctx context.Context, redisURL string, opts PoolOptions) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if opts.PoolSize > 0 {
		opt.PoolSize = opts.PoolSize
	}
	if opts.MinIdleConns > 0 {
		opt.MinIdleConns = opts.MinIdleConns
	}
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ClientName = "todomanager"

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client for test fixtures.
func (c *Cache) Client() *redis.Client {
	return c.client
}
