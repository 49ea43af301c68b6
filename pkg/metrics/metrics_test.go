package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then defaults apply", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.rowsComputed.Add(2)

			Convey("Then names and labels follow the options", func() {
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_pfx_rows_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When zero values are passed to options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithRefreshInterval(0),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "planner")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.histogramBuckets, ShouldResemble, latencyBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording a calculation", func() {
			before := valueOf(globalManager.rowsUnavailable)
			RecordCalculation("inferred", 10, 2, 1.5)

			Convey("Then the counters move", func() {
				So(valueOf(globalManager.rowsUnavailable), ShouldEqual, before+2)
				So(valueOf(globalManager.calculations.WithLabelValues("inferred")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording FX and country outcomes", func() {
			RecordFxFetch(OutcomeStale, 12)
			UpdateFxSnapshot(time.Unix(1700000000, 0), 160)
			RecordCountryLoad(OutcomeFallback)
			RecordCountryLoadRetry()
			UpdateCountriesCached(250)

			Convey("Then gauges hold the last value", func() {
				So(valueOf(globalManager.fxLastSuccess), ShouldEqual, 1700000000)
				So(valueOf(globalManager.fxRatesReturned), ShouldEqual, 160)
				So(valueOf(globalManager.countriesCached), ShouldEqual, 250)
				So(valueOf(globalManager.fxFetches.WithLabelValues(OutcomeStale)), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("/api/v1/genres", "GET", "200")
				RecordHTTPRequestDuration("/api/v1/genres", "GET", "200", 0.4)
				RecordOutboundRequest("open.er-api.com", "200")
				RecordErrorByComponent("fx", "unavailable")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.1)
			}, ShouldNotPanic)

			Convey("Then the registry exposes the planner namespace", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "planner_pricing_"), ShouldBeTrue)
				}
				So(Global(), ShouldEqual, globalManager)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given options read from config", t, func() {
		prevManager, prevRegistry := globalManager, customRegistry
		Reset(func() { globalManager, customRegistry = prevManager, prevRegistry })

		m := Init(
			WithNamespace("qa"),
			WithMetricsEnabled(false),
			WithHistogramBuckets([]float64{50, -1, 5, 50}),
			WithCustomLabels(map[string]string{"region": "eu"}),
			WithCustomLabels(map[string]string{"env": "ci"}),
		)

		Convey("Then the global manager is rebuilt on a fresh registry", func() {
			So(Global(), ShouldEqual, m)
			So(GetRegistry(), ShouldNotEqual, prevRegistry)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "qa_pricing_"), ShouldBeTrue)
			}
		})

		Convey("And buckets are cleaned and labels merged", func() {
			So(m.histogramBuckets, ShouldResemble, []float64{5, 50})
			So(m.customLabels, ShouldResemble, map[string]string{"region": "eu", "env": "ci"})
		})

		Convey("And a disabled manager records nothing", func() {
			RecordCalculation("manual", 3, 1, 2)
			So(valueOf(m.rowsComputed), ShouldEqual, 0)
		})
	})
}

func valueOf(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return -1
	}
	switch {
	case out.Counter != nil:
		return out.GetCounter().GetValue()
	case out.Gauge != nil:
		return out.GetGauge().GetValue()
	}
	return -1
}
