package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/questline/pricing-planner/internal/app"
	"github.com/questline/pricing-planner/internal/domain/model"
	"github.com/questline/pricing-planner/internal/domain/types"
	"github.com/questline/pricing-planner/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errUpstream = errors.New("upstream down")

type fakeFx struct {
	mu    sync.Mutex
	rates model.FxRateTable
	err   error
	calls atomic.Int32
}

func (f *fakeFx) Latest(_ context.Context) (model.FxRateTable, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(model.FxRateTable, len(f.rates))
	for k, v := range f.rates {
		out[k] = v
	}
	return out, nil
}

func (f *fakeFx) set(rates model.FxRateTable, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates, f.err = rates, err
}

type fakeCountries struct {
	list  []model.CountryProfile
	err   error
	calls atomic.Int32
}

func (f *fakeCountries) Countries(_ context.Context) ([]model.CountryProfile, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

var dataset = []model.CountryProfile{
	{Code: "US", Name: "United States", NativeCurrencyCodes: []string{"USD"}},
	{Code: "DE", Name: "Germany", NativeCurrencyCodes: []string{"EUR"}},
	{Code: "JP", Name: "Japan", NativeCurrencyCodes: []string{"JPY"}},
	{Code: "AM", Name: "Armenia", NativeCurrencyCodes: []string{"AMD"}},
	{Code: "IN", Name: "India", NativeCurrencyCodes: []string{"INR"}},
}

var rates = model.FxRateTable{"USD": 1, "EUR": 0.92, "JPY": 150, "INR": 83}

func rowByCode(q types.Quote, code string) types.PriceRow {
	for _, r := range q.Rows {
		if r.CountryCode == code {
			return r
		}
	}
	return types.PriceRow{}
}

func codes(q types.Quote) []string {
	out := make([]string, 0, len(q.Rows))
	for _, r := range q.Rows {
		out = append(out, r.CountryCode)
	}
	return out
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["countryCache"], ShouldEqual, "memory")
			So(stats["fxStatus"], ShouldEqual, "none")
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service with a country source", t, func() {
		src := &fakeCountries{list: dataset}
		svc := service.New(service.WithCountrySource(src), service.WithFxSource(&fakeFx{rates: rates}))

		Convey("When it is started", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then the dataset is warmed once in the background", func() {
				So(waitFor(func() bool { return src.calls.Load() == 1 }), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldBeTrue)
			})

			Convey("And it can be stopped and restarted", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldBeFalse)
				So(svc.Start(context.Background()), ShouldBeNil)
				svc.Stop()
				svc.Stop()
			})
		})
	})
}

func TestService_Calculate(t *testing.T) {
	Convey("Given a service with fake sources", t, func() {
		fx := &fakeFx{rates: rates}
		src := &fakeCountries{list: dataset}
		svc := service.New(
			service.WithFxSource(fx),
			service.WithCountrySource(src),
			service.WithFeaturedCountries([]string{"de", "us", "XX", "JP", "DE"}),
		)
		ctx := context.Background()

		Convey("When calculating the featured rows", func() {
			q, err := svc.Calculate(ctx, service.Request{Genre: "rpg", Hours: 12, DiscountPercent: 20})

			Convey("Then featured countries keep the configured order", func() {
				So(err, ShouldBeNil)
				So(codes(q), ShouldResemble, []string{"DE", "US", "JP"})
				So(q.ID, ShouldNotBeEmpty)
				So(q.CountrySource, ShouldEqual, service.SourceUpstream)
			})

			Convey("And the prices follow the pipeline", func() {
				So(q.Base.USD, ShouldEqual, "19.99")
				So(q.Base.Reason, ShouldEqual, "inferred")
				de := rowByCode(q, "DE")
				So(*de.ListPrice, ShouldEqual, "18.39")
				So(*de.SalePrice, ShouldEqual, "14.71")
				us := rowByCode(q, "US")
				So(*us.SalePrice, ShouldEqual, "15.99")
			})

			Convey("And the fx info describes a fresh committed fetch", func() {
				So(q.Fx.Status, ShouldEqual, "ok")
				So(q.Fx.Sequence, ShouldEqual, 1)
				So(q.Fx.Reused, ShouldBeFalse)
				So(q.Fx.Superseded, ShouldBeFalse)
				So(q.Fx.FetchedAt, ShouldNotBeNil)
			})
		})

		Convey("When all countries are requested", func() {
			q, err := svc.Calculate(ctx, service.Request{Genre: "rpg", Hours: 12, AllCountries: true})

			Convey("Then every country is priced, sorted by name", func() {
				So(err, ShouldBeNil)
				So(codes(q), ShouldResemble, []string{"AM", "DE", "IN", "JP", "US"})
				So(*rowByCode(q, "AM").ListPrice, ShouldEqual, "13.99")
			})
		})

		Convey("When the dataset is cached", func() {
			_, _ = svc.Calculate(ctx, service.Request{Genre: "rpg"})
			q, _ := svc.Calculate(ctx, service.Request{Genre: "rpg"})

			Convey("Then the second call is served from the cache", func() {
				So(src.calls.Load(), ShouldEqual, 1)
				So(q.CountrySource, ShouldEqual, service.SourceCache)
			})
		})

		Convey("When reusing rates before any fetch", func() {
			q, _ := svc.Calculate(ctx, service.Request{Genre: "rpg", ReuseRates: true})

			Convey("Then it fetches anyway", func() {
				So(fx.calls.Load(), ShouldEqual, 1)
				So(q.Fx.Reused, ShouldBeFalse)
				So(q.Fx.Status, ShouldEqual, "ok")
			})
		})

		Convey("When reusing rates after a fetch", func() {
			_, _ = svc.Calculate(ctx, service.Request{Genre: "rpg"})
			fx.set(nil, errUpstream)
			q, _ := svc.Calculate(ctx, service.Request{Genre: "rpg", DiscountPercent: 50, ReuseRates: true})

			Convey("Then the snapshot is reused without fetching", func() {
				So(fx.calls.Load(), ShouldEqual, 1)
				So(q.Fx.Reused, ShouldBeTrue)
				So(q.Fx.Sequence, ShouldEqual, 1)
				So(*rowByCode(q, "DE").ListPrice, ShouldEqual, "18.39")
			})
		})

		Convey("When an explicit recalculation fails to fetch rates", func() {
			_, _ = svc.Calculate(ctx, service.Request{Genre: "rpg"})
			fx.set(nil, errUpstream)
			q, err := svc.Calculate(ctx, service.Request{Genre: "rpg"})

			Convey("Then stale rates are not used", func() {
				So(err, ShouldBeNil)
				So(q.Fx.Status, ShouldEqual, "unavailable")
				So(q.Fx.Error, ShouldContainSubstring, "upstream down")
				So(rowByCode(q, "DE").ListPrice, ShouldBeNil)
			})

			Convey("And USD rows are still priced", func() {
				So(*rowByCode(q, "US").ListPrice, ShouldEqual, "19.99")
			})

			Convey("And the unavailable state is sticky for reuse", func() {
				r, _ := svc.Calculate(ctx, service.Request{Genre: "rpg", ReuseRates: true})
				So(r.Fx.Status, ShouldEqual, "unavailable")
				So(r.Fx.Reused, ShouldBeTrue)
				So(rowByCode(r, "DE").ListPrice, ShouldBeNil)
			})

			Convey("And the next successful fetch clears it", func() {
				fx.set(rates, nil)
				r, _ := svc.Calculate(ctx, service.Request{Genre: "rpg"})
				So(r.Fx.Status, ShouldEqual, "ok")
				So(svc.FxStatus(ctx).Status, ShouldEqual, "ok")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Calculate(cctx, service.Request{Genre: "rpg"})

			Convey("Then ErrCanceled is returned", func() {
				So(errors.Is(err, service.ErrCanceled), ShouldBeTrue)
			})
		})
	})
}

func TestService_CountryFallback(t *testing.T) {
	Convey("Given a country source that always fails", t, func() {
		svc := service.New(
			service.WithFxSource(&fakeFx{rates: rates}),
			service.WithCountrySource(&fakeCountries{err: errUpstream}),
			service.WithFeaturedCountries([]string{"DE", "JP"}),
		)

		Convey("When calculating", func() {
			q, err := svc.Calculate(context.Background(), service.Request{Genre: "casual"})

			Convey("Then the bundled list keeps the pipeline total", func() {
				So(err, ShouldBeNil)
				So(q.CountrySource, ShouldEqual, service.SourceFallback)
				So(codes(q), ShouldResemble, []string{"DE", "JP"})
				So(svc.GetStats()["countryFallbacks"], ShouldEqual, uint64(1))
			})
		})
	})
}

// blockingFx blocks its first call until release is closed.
type blockingFx struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingFx) Latest(_ context.Context) (model.FxRateTable, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
		<-b.release
		return model.FxRateTable{"EUR": 2}, nil
	}
	return model.FxRateTable{"EUR": 0.92}, nil
}

func TestService_LastRequestWins(t *testing.T) {
	Convey("Given two overlapping recalculations", t, func() {
		fx := &blockingFx{entered: make(chan struct{}), release: make(chan struct{})}
		svc := service.New(
			service.WithFxSource(fx),
			service.WithCountrySource(&fakeCountries{list: dataset}),
			service.WithFeaturedCountries([]string{"DE"}),
		)
		ctx := context.Background()

		first := make(chan types.Quote, 1)
		go func() {
			q, _ := svc.Calculate(ctx, service.Request{Genre: "rpg"})
			first <- q
		}()
		<-fx.entered

		second, err := svc.Calculate(ctx, service.Request{Genre: "rpg"})
		So(err, ShouldBeNil)
		close(fx.release)
		older := <-first

		Convey("Then the newer response owns the snapshot", func() {
			So(second.Fx.Superseded, ShouldBeFalse)
			So(second.Fx.Sequence, ShouldEqual, 2)
			snap := svc.FxStatus(ctx)
			So(snap.Sequence, ShouldEqual, 2)
		})

		Convey("And the older response is flagged superseded", func() {
			So(older.Fx.Superseded, ShouldBeTrue)
			So(older.Fx.Sequence, ShouldEqual, 1)
		})

		Convey("And reusing rates prices with the newer table", func() {
			q, _ := svc.Calculate(ctx, service.Request{Genre: "rpg", ReuseRates: true})
			So(*rowByCode(q, "DE").ListPrice, ShouldEqual, "18.39")
		})
	})
}

func TestService_Tables(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("Then it exposes the static tables", func() {
			So(len(svc.Genres()), ShouldBeGreaterThan, 0)
			So(svc.Tiers(), ShouldHaveLength, 4)
			So(svc.Tiers()[0].Factor, ShouldEqual, "1.00")
		})

		Convey("And base price inference honours a manual override", func() {
			manual := 14.5
			b := svc.BasePrice(context.Background(), "rpg", 12, &manual)
			So(b.Reason, ShouldEqual, "manual")
			So(b.USD, ShouldEqual, "14.50")
		})

		Convey("And a sub-cent manual value is reported as priced", func() {
			manual := 15.999
			b := svc.BasePrice(context.Background(), "rpg", -5, &manual)
			So(b.USD, ShouldEqual, "16.00")
			So(b.Hours, ShouldEqual, 0)
		})
	})
}

func TestService_RefreshRates(t *testing.T) {
	Convey("Given a service with an FX source", t, func() {
		ctx := context.Background()
		fx := &fakeFx{rates: rates}
		svc := service.New(service.WithFxSource(fx))

		Convey("When refreshing", func() {
			info := svc.RefreshRates(ctx)

			Convey("Then a fresh snapshot is committed", func() {
				So(info.Status, ShouldEqual, "ok")
				So(info.Sequence, ShouldEqual, 1)
				So(info.Rates, ShouldEqual, len(rates))
				So(svc.FxStatus(ctx).Sequence, ShouldEqual, 1)
			})

			Convey("And a failing refresh marks the rates unavailable", func() {
				fx.set(nil, errUpstream)
				info := svc.RefreshRates(ctx)
				So(info.Status, ShouldEqual, "unavailable")
				So(info.Sequence, ShouldEqual, 2)
				So(svc.FxStatus(ctx).Status, ShouldEqual, "unavailable")
				So(fx.calls.Load(), ShouldEqual, 2)
			})
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
