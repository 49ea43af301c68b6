package repository

import (
	"context"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/questline/pricing-planner/internal/domain/model"
)

// MemoryCountryCache keeps the dataset in process with go-cache expiry.
type MemoryCountryCache struct {
	c   *gocache.Cache
	key string
	ttl time.Duration
}

func newMemoryCountryCache(cfg cacheConfig) *MemoryCountryCache {
	return &MemoryCountryCache{
		c:   gocache.New(cfg.ttl, 2*cfg.ttl),
		key: cfg.key,
		ttl: cfg.ttl,
	}
}

// Get implements CountryCache.
func (m *MemoryCountryCache) Get(_ context.Context) ([]model.CountryProfile, bool, error) {
	v, ok := m.c.Get(m.key)
	if !ok {
		return nil, false, nil
	}
	list, ok := v.([]model.CountryProfile)
	if !ok {
		return nil, false, ErrCacheData
	}
	return slices.Clone(list), true, nil
}

// Set implements CountryCache.
func (m *MemoryCountryCache) Set(_ context.Context, countries []model.CountryProfile) error {
	m.c.Set(m.key, slices.Clone(countries), m.ttl)
	return nil
}

// Backend implements CountryCache.
func (m *MemoryCountryCache) Backend() string { return "memory" }
