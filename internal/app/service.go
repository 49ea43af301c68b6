// Package service provides the planner service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/questline/pricing-planner/internal/adapters/countries"
	"github.com/questline/pricing-planner/internal/adapters/fx"
	"github.com/questline/pricing-planner/internal/adapters/repository"
	"github.com/questline/pricing-planner/pkg/logger"
)

// defaultFeatured is shown when no featured list is configured.
var defaultFeatured = []string{ //nolint:gochecknoglobals // static default
	"US", "GB", "DE", "FR", "PL", "TR", "BR", "MX", "AR",
	"IN", "ID", "JP", "KR", "CN", "AU", "CA", "KZ", "UA",
}

// Service implements the API dependencies for the pricing planner.
type Service struct {
	mu sync.RWMutex

	// Upstream sources and state
	fx        fx.Source
	countries countries.Source
	cache     repository.CountryCache
	snapshots *repository.FxSnapshotHolder
	loads     singleflight.Group

	// Configuration
	featured []string
	now      func() time.Time

	// State
	started bool
	stopCh  chan struct{}

	// Counters
	calculations  atomic.Uint64
	countryHits   atomic.Uint64
	countryLoads  atomic.Uint64
	fallbackLoads atomic.Uint64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFxSource sets the FX rate source.
func WithFxSource(src fx.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.fx = src
		}
	}
}

// WithCountrySource sets the country dataset source.
func WithCountrySource(src countries.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.countries = src
		}
	}
}

// WithCountryCache sets the dataset cache.
func WithCountryCache(c repository.CountryCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithSnapshotHolder sets the FX snapshot holder.
func WithSnapshotHolder(h *repository.FxSnapshotHolder) Option {
	return func(s *Service) {
		if h != nil {
			s.snapshots = h
		}
	}
}

// WithFeaturedCountries sets the ISO codes shown unless all countries are
// requested. Order is kept.
func WithFeaturedCountries(codes []string) Option {
	return func(s *Service) {
		if len(codes) > 0 {
			s.featured = normalizeCodes(codes)
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Sources default to the public endpoints and the
// cache to an in-memory one.
func New(opts ...Option) *Service {
	s := &Service{
		featured: defaultFeatured,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.fx == nil {
		s.fx = fx.NewClient()
	}
	if s.countries == nil {
		s.countries = countries.NewClient()
	}
	if s.cache == nil {
		s.cache = repository.NewCountryCache()
	}
	if s.snapshots == nil {
		s.snapshots = repository.NewFxSnapshotHolder()
	}

	return s
}

// Start warms the country cache in the background. Calculations work before
// the warm-up finishes; they load or fall back on demand.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting pricing planner service...",
		logger.Int("featured", len(s.featured)),
		logger.String("cache", s.cache.Backend()),
	)

	stop := make(chan struct{})
	s.stopCh = stop

	warmCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go func() {
		defer cancel()
		select {
		case <-stop:
		case <-warmCtx.Done():
		}
	}()
	go func() {
		list, source := s.loadCountries(warmCtx)
		s.logger.Info(warmCtx, "country dataset warmed",
			logger.Int("countries", len(list)),
			logger.String("source", source),
		)
	}()

	s.started = true
	return nil
}

// Stop cancels background work.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping pricing planner service...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "pricing planner service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	snap := s.snapshots.Current(context.Background())
	return map[string]interface{}{
		"started":           started,
		"calculations":      s.calculations.Load(),
		"featuredCountries": len(s.featured),
		"countryCache":      s.cache.Backend(),
		"countryCacheHits":  s.countryHits.Load(),
		"countryLoads":      s.countryLoads.Load(),
		"countryFallbacks":  s.fallbackLoads.Load(),
		"fxStatus":          string(snap.Status),
		"fxSequence":        snap.Sequence,
		"fxSnapshots":       s.snapshots.Stats(),
	}
}
