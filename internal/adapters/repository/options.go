// Package repository holds the service's in-process state: the FX snapshot
// and the country dataset cache.
package repository

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotOption configures an FxSnapshotHolder.
type SnapshotOption func(*FxSnapshotHolder)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) SnapshotOption {
	return func(h *FxSnapshotHolder) {
		if now != nil {
			h.now = now
		}
	}
}

// CacheOption configures a country cache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	ttl    time.Duration
	key    string
	client redis.UniversalClient
}

const (
	defaultCacheTTL = 24 * time.Hour
	defaultCacheKey = "planner:countries:v1"
)

// WithTTL sets how long the dataset stays cached.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *cacheConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKey sets the cache key.
func WithKey(key string) CacheOption {
	return func(c *cacheConfig) {
		if key != "" {
			c.key = key
		}
	}
}

// WithRedisClient makes NewCountryCache return a Redis backed cache.
func WithRedisClient(client redis.UniversalClient) CacheOption {
	return func(c *cacheConfig) {
		c.client = client
	}
}
