package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/questline/pricing-planner/internal/domain/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

// RedisCountryCache shares the dataset between planner instances.
type RedisCountryCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func newRedisCountryCache(cfg cacheConfig) *RedisCountryCache {
	return &RedisCountryCache{client: cfg.client, key: cfg.key, ttl: cfg.ttl}
}

// Get implements CountryCache.
func (r *RedisCountryCache) Get(ctx context.Context) ([]model.CountryProfile, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}
	out, err := decodeCountries(raw)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Set implements CountryCache.
func (r *RedisCountryCache) Set(ctx context.Context, countries []model.CountryProfile) error {
	raw, err := json.Marshal(countries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	return nil
}

// Backend implements CountryCache.
func (r *RedisCountryCache) Backend() string { return "redis" }

func decodeCountries(raw []byte) ([]model.CountryProfile, error) {
	var out []model.CountryProfile
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheData, err)
	}
	if len(out) == 0 {
		return nil, ErrCacheData
	}
	return out, nil
}
