package repository

import (
	"context"

	"github.com/questline/pricing-planner/internal/domain/model"
)

// SnapshotStore tracks FX fetches with sequence numbers.
type SnapshotStore interface {
	// Begin issues a new, strictly increasing sequence number.
	Begin(ctx context.Context) uint64
	// Commit stores rates for seq. Returns false when seq was superseded.
	Commit(ctx context.Context, seq uint64, rates model.FxRateTable) bool
	// Fail marks seq as failed. Returns false when seq was superseded.
	Fail(ctx context.Context, seq uint64, cause error) bool
	// Current returns the last applied snapshot.
	Current(ctx context.Context) model.FxSnapshot
}

// CountryCache stores the parsed country dataset.
type CountryCache interface {
	// Get returns the cached dataset; ok is false on a miss.
	Get(ctx context.Context) (countries []model.CountryProfile, ok bool, err error)
	// Set replaces the cached dataset.
	Set(ctx context.Context, countries []model.CountryProfile) error
	// Backend names the implementation for stats.
	Backend() string
}

// NewCountryCache returns a Redis cache when WithRedisClient is given and an
// in-memory cache otherwise.
func NewCountryCache(opts ...CacheOption) CountryCache {
	cfg := cacheConfig{ttl: defaultCacheTTL, key: defaultCacheKey}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.client != nil {
		return newRedisCountryCache(cfg)
	}
	return newMemoryCountryCache(cfg)
}
