// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers a YAML file, a .env file and PLANNER_* env vars on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"time"
)

// Default upstream endpoints.
const (
	DefaultFxURL        = "https://open.er-api.com/v6/latest/USD"
	DefaultCountriesURL = "https://cdn.jsdelivr.net/npm/world-countries@5/countries.json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text, json or tint.
	LogFormat string `koanf:"log_format"`

	// LogFieldMaxLen truncates logged request/response bodies of outbound calls.
	LogFieldMaxLen int `koanf:"log_field_max_len"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FxURL and CountriesURL point at the upstream data sources.
	FxURL        string `koanf:"fx_url"`
	CountriesURL string `koanf:"countries_url"`

	// HTTPTimeoutMS bounds each outbound request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// CountryCacheTTLSec is how long the country dataset is cached.
	CountryCacheTTLSec int `koanf:"country_cache_ttl_sec"`

	// CountriesRetryMaxElapsedMS caps the total time spent retrying the
	// country dataset before falling back to the bundled list.
	CountriesRetryMaxElapsedMS int `koanf:"countries_retry_max_elapsed_ms"`

	// Redis settings. An empty RedisAddr keeps the cache in memory.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// FeaturedCountries are the ISO codes shown unless all countries are requested.
	FeaturedCountries []string `koanf:"featured_countries"`

	// Metrics settings. Empty name parts keep the "planner_pricing_" defaults.
	MetricsEnabled    bool   `koanf:"metrics_enabled"`
	MetricsNamespace  string `koanf:"metrics_namespace"`
	MetricsSubsystem  string `koanf:"metrics_subsystem"`
	MetricsPrefix     string `koanf:"metrics_prefix"`
	MetricsRefreshSec int    `koanf:"metrics_refresh_sec"`

	// MetricsBucketsMS overrides the latency histogram buckets (YAML list).
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`

	// MetricsLabels are constant labels added to every series (YAML map).
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                   "info",
		LogFormat:                  "text",
		LogFieldMaxLen:             2048,
		Addr:                       ":9080",
		FxURL:                      DefaultFxURL,
		CountriesURL:               DefaultCountriesURL,
		HTTPTimeoutMS:              8000,
		CountryCacheTTLSec:         24 * 60 * 60,
		CountriesRetryMaxElapsedMS: 15000,
		MetricsEnabled:             true,
		MetricsRefreshSec:          10,
		FeaturedCountries: []string{
			"US", "GB", "DE", "FR", "PL", "TR", "BR", "MX", "AR",
			"IN", "ID", "JP", "KR", "CN", "AU", "CA", "KZ", "UA",
		},
	}
}

// HTTPTimeout returns HTTPTimeoutMS as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// CountryCacheTTL returns CountryCacheTTLSec as a duration.
func (c *Config) CountryCacheTTL() time.Duration {
	return time.Duration(c.CountryCacheTTLSec) * time.Second
}

// CountriesRetryMaxElapsed returns CountriesRetryMaxElapsedMS as a duration.
func (c *Config) CountriesRetryMaxElapsed() time.Duration {
	return time.Duration(c.CountriesRetryMaxElapsedMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshSec as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSec) * time.Second
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FxURL == "":
		return fmt.Errorf("%w: fx_url must not be empty", ErrInvalidConfig)
	case c.CountriesURL == "":
		return fmt.Errorf("%w: countries_url must not be empty", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.CountryCacheTTLSec <= 0:
		return fmt.Errorf("%w: country_cache_ttl_sec must be positive", ErrInvalidConfig)
	case c.MetricsRefreshSec <= 0:
		return fmt.Errorf("%w: metrics_refresh_sec must be positive", ErrInvalidConfig)
	}
	return nil
}
