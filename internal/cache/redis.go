// Package cache provides a tiny Redis client wrapper for caching forecast
// results. The cache is a pure latency optimization: with a deterministic
// model the cached response is identical to a recomputed one, and the
// pipeline itself stays stateless.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client for forecast result storage
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Cache instance connected to the specified Redis address.
// Entries expire after ttl.
func New(addr string, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password by default
		DB:       0,  // Default DB
	})

	// Test connection
	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Key derives a cache key from the canonical request payload bytes.
func Key(payload []byte) string {
	sum := sha256.Sum256(payload)
	return "forecast:" + hex.EncodeToString(sum[:])
}

// GetForecast retrieves a cached forecast payload. A miss returns "" with
// no error.
func (c *Cache) GetForecast(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("cache client is nil")
	}

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil // Key does not exist
	}
	if err != nil {
		return "", fmt.Errorf("failed to get forecast %s: %w", key, err)
	}

	return data, nil
}

// SetForecast stores a forecast payload under the given key.
func (c *Cache) SetForecast(ctx context.Context, key, payload string) error {
	if c.client == nil {
		return fmt.Errorf("cache client is nil")
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set forecast %s: %w", key, err)
	}

	return nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
