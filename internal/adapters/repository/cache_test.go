package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/questline/pricing-planner/internal/adapters/repository"
	"github.com/questline/pricing-planner/internal/domain/model"
)

func TestMemoryCountryCache(t *testing.T) {
	Convey("Given an in-memory country cache", t, func() {
		ctx := context.Background()
		cache := repository.NewCountryCache(repository.WithTTL(time.Hour))
		list := []model.CountryProfile{
			{Code: "DE", Name: "Germany", NativeCurrencyCodes: []string{"EUR"}},
			{Code: "JP", Name: "Japan", NativeCurrencyCodes: []string{"JPY"}},
		}

		So(cache.Backend(), ShouldEqual, "memory")

		Convey("When nothing was stored", func() {
			got, ok, err := cache.Get(ctx)

			Convey("Then it is a miss without error", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(got, ShouldBeNil)
			})
		})

		Convey("When a dataset is stored", func() {
			So(cache.Set(ctx, list), ShouldBeNil)
			list[0].Name = "changed"
			got, ok, err := cache.Get(ctx)

			Convey("Then it is returned as stored", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(len(got), ShouldEqual, 2)
				So(got[0].Name, ShouldEqual, "Germany")
			})
		})

		Convey("When the entry expires", func() {
			short := repository.NewCountryCache(repository.WithTTL(20 * time.Millisecond))
			So(short.Set(ctx, list), ShouldBeNil)
			time.Sleep(40 * time.Millisecond)
			_, ok, _ := short.Get(ctx)

			Convey("Then it is a miss", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestRedisCountryCache(t *testing.T) {
	Convey("Given a Redis country cache whose server is unreachable", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer func() { _ = client.Close() }()

		cache := repository.NewCountryCache(repository.WithRedisClient(client), repository.WithKey("test:countries"))
		So(cache.Backend(), ShouldEqual, "redis")

		Convey("When reading", func() {
			_, ok, err := cache.Get(ctx)

			Convey("Then the error is reported as a read failure", func() {
				So(ok, ShouldBeFalse)
				So(errors.Is(err, repository.ErrCacheRead), ShouldBeTrue)
			})
		})

		Convey("When writing", func() {
			err := cache.Set(ctx, []model.CountryProfile{{Code: "DE", Name: "Germany"}})

			Convey("Then the error is reported as a write failure", func() {
				So(errors.Is(err, repository.ErrCacheWrite), ShouldBeTrue)
			})
		})
	})
}
