package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/questline/pricing-planner/internal/adapters/countries"
	"github.com/questline/pricing-planner/internal/adapters/fx"
	"github.com/questline/pricing-planner/internal/adapters/http/api"
	"github.com/questline/pricing-planner/internal/adapters/http/site"
	"github.com/questline/pricing-planner/internal/adapters/http/swagger"
	"github.com/questline/pricing-planner/internal/adapters/repository"
	app "github.com/questline/pricing-planner/internal/app"
	"github.com/questline/pricing-planner/internal/config"
	"github.com/questline/pricing-planner/pkg/httpx"
	"github.com/questline/pricing-planner/pkg/logger"
	"github.com/questline/pricing-planner/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	redisPingTimeout          = 2 * time.Second
	countriesRetryMaxWait     = 2 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Custom system metrics replace the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet.
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init(metricsOptions(cfg)...)

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "planner exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, closeDeps := newService(ctx, cfg)
	defer closeDeps()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx, metrics.Global().RefreshInterval())
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info(shutdownCtx, "server stopped")
		return nil
	})

	return g.Wait()
}

// metricsOptions maps the metrics config onto pkg/metrics options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
		metrics.WithHistogramBuckets(cfg.MetricsBucketsMS),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	}
}

// newService wires the upstream clients, the country cache and the service.
// The returned func releases the Redis connection, if any.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, func()) {
	log := logger.Get()
	client := httpx.NewClient(cfg.HTTPTimeout(),
		httpx.WithLogFieldMaxLen(cfg.LogFieldMaxLen),
		httpx.WithSensitiveDataMasker(httpx.HeaderMasker{}),
	)

	cacheOpts := []repository.CacheOption{repository.WithTTL(cfg.CountryCacheTTL())}
	closeDeps := func() {}
	if rdb := newRedis(ctx, cfg); rdb != nil {
		cacheOpts = append(cacheOpts, repository.WithRedisClient(rdb))
		closeDeps = func() {
			if err := rdb.Close(); err != nil {
				log.Warn(ctx, "redis close failed", logger.Error(err))
			}
		}
	}

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithFxSource(fx.NewClient(
			fx.WithURL(cfg.FxURL),
			fx.WithHTTPClient(client),
		)),
		app.WithCountrySource(countries.NewClient(
			countries.WithURL(cfg.CountriesURL),
			countries.WithHTTPClient(client),
			countries.WithRetry(cfg.CountriesRetryMaxElapsed(), countriesRetryMaxWait),
		)),
		app.WithCountryCache(repository.NewCountryCache(cacheOpts...)),
		app.WithFeaturedCountries(cfg.FeaturedCountries),
	)
	return svc, closeDeps
}

// newRedis returns a client when Redis is configured and reachable.
func newRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	log := logger.Get()
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn(ctx, "redis unreachable; country cache stays in memory",
			logger.String("addr", cfg.RedisAddr), logger.Error(err))
		_ = rdb.Close()
		return nil
	}
	log.Info(ctx, "country cache backed by redis", logger.String("addr", cfg.RedisAddr))
	return rdb
}

func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater refreshes the system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
