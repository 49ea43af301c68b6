package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/questline/pricing-planner/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.RedisAddr, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PLANNER_ADDR", ":8080")
			_ = os.Setenv("PLANNER_HTTP_TIMEOUT_MS", "2500")
			_ = os.Setenv("PLANNER_REDIS_ADDR", "localhost:6379")
			_ = os.Setenv("PLANNER_REDIS_DB", "3")
			_ = os.Setenv("PLANNER_LOG_FORMAT", "json")
			_ = os.Setenv("PLANNER_METRICS_ENABLED", "false")
			_ = os.Setenv("PLANNER_METRICS_REFRESH_SEC", "30")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.HTTPTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.RedisDB, convey.ShouldEqual, 3)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
fx_url: "http://fx.local/latest"
country_cache_ttl_sec: 60
featured_countries:
  - DE
  - JP
metrics_namespace: qa
metrics_buckets_ms: [5, 50, 500]
metrics_labels:
  region: eu
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("PLANNER_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.FxURL, convey.ShouldEqual, "http://fx.local/latest")
				convey.So(cfg.CountryCacheTTLSec, convey.ShouldEqual, 60)
				convey.So(cfg.FeaturedCountries, convey.ShouldResemble, []string{"DE", "JP"})
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "qa")
				convey.So(cfg.MetricsBucketsMS, convey.ShouldResemble, []float64{5, 50, 500})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"region": "eu"})
				convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			})

			convey.Convey("And env vars take precedence over the file", func() {
				_ = os.Setenv("PLANNER_ADDR", ":7070")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.FxURL, convey.ShouldEqual, "http://fx.local/latest")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PLANNER_CONFIG", "/nonexistent/planner.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail with ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config is invalid", func() {
			_ = os.Setenv("PLANNER_HTTP_TIMEOUT_MS", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"PLANNER_CONFIG", "PLANNER_ADDR", "PLANNER_HTTP_TIMEOUT_MS",
		"PLANNER_REDIS_ADDR", "PLANNER_REDIS_DB", "PLANNER_LOG_FORMAT",
		"PLANNER_METRICS_ENABLED", "PLANNER_METRICS_REFRESH_SEC",
	} {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "planner-*.yaml")
	if err != nil {
		t.Fatalf("create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	_ = f.Close()
	return f.Name()
}
