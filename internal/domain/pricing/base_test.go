package pricing_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/questline/pricing-planner/internal/domain/model"
	"github.com/questline/pricing-planner/internal/domain/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v float64) *float64 { return &v }

func TestInferBaseUSD(t *testing.T) {
	Convey("Given the genre table", t, func() {
		Convey("When an rpg runs 12 hours", func() {
			base := pricing.InferBaseUSD("rpg", 12, nil)

			Convey("Then the anchor stays on the 19.99 tier", func() {
				So(base.USD.Equal(dec("19.99")), ShouldBeTrue)
				So(base.Reason, ShouldEqual, pricing.ReasonInferred)
				So(base.Genre, ShouldEqual, pricing.GenreRPG)
			})
		})

		Convey("When a casual game has zero hours", func() {
			base := pricing.InferBaseUSD("casual", 0, nil)

			Convey("Then the short game multiplier applies and snaps down", func() {
				// 7.99 * 0.80 = 6.392, nearest tier 5.99
				So(base.USD.Equal(dec("5.99")), ShouldBeTrue)
			})
		})

		Convey("When a sports game is very long", func() {
			long := pricing.InferBaseUSD("sports", 40, nil)
			clamped := pricing.InferBaseUSD("sports", 5000, nil)

			Convey("Then the long game multiplier applies", func() {
				// 29.99 * 1.30 = 38.987, nearest tier 39.99
				So(long.USD.Equal(dec("39.99")), ShouldBeTrue)
				So(clamped.USD.Equal(long.USD), ShouldBeTrue)
				So(clamped.Hours, ShouldEqual, pricing.MaxHours)
			})
		})

		Convey("When the genre is unknown", func() {
			base := pricing.InferBaseUSD("space-opera", 12, nil)

			Convey("Then the default genre is used", func() {
				So(base.Genre, ShouldEqual, pricing.DefaultGenre)
				So(base.USD.Equal(dec("14.99")), ShouldBeTrue)
			})
		})

		Convey("When the genre id has odd casing and spaces", func() {
			base := pricing.InferBaseUSD("  RPG ", 12, nil)

			Convey("Then it still matches", func() {
				So(base.Genre, ShouldEqual, pricing.GenreRPG)
			})
		})

		Convey("When hours are not a number", func() {
			nan := pricing.InferBaseUSD("rpg", math.NaN(), nil)
			neg := pricing.InferBaseUSD("rpg", -10, nil)
			zero := pricing.InferBaseUSD("rpg", 0, nil)

			Convey("Then they count as zero", func() {
				So(nan.Hours, ShouldEqual, 0)
				So(nan.USD.Equal(zero.USD), ShouldBeTrue)
				So(neg.USD.Equal(zero.USD), ShouldBeTrue)
			})
		})
	})

	Convey("Given a manual override", t, func() {
		Convey("When it is a positive number", func() {
			base := pricing.InferBaseUSD("rpg", 12, ptr(15))

			Convey("Then it replaces the inferred price verbatim", func() {
				So(base.USD.Equal(decimal.NewFromInt(15)), ShouldBeTrue)
				So(base.Reason, ShouldEqual, pricing.ReasonManual)
			})
		})

		Convey("When it has sub-cent digits", func() {
			base := pricing.InferBaseUSD("rpg", 12, ptr(15.999))

			Convey("Then it is rounded to cents once", func() {
				So(base.USD.Equal(dec("16")), ShouldBeTrue)
				So(base.USD.StringFixed(2), ShouldEqual, "16.00")
			})

			Convey("And rows are priced from the rounded anchor", func() {
				us := model.CountryProfile{Code: "US", Name: "United States", NativeCurrencyCodes: []string{"USD"}}
				row := pricing.ComputeRow(base.USD, us, nil, 0)
				list, _ := row.Display()
				So(list, ShouldEqual, "16.00")
			})
		})

		Convey("When it is below the floor", func() {
			base := pricing.InferBaseUSD("rpg", 12, ptr(0.5))

			Convey("Then the floor applies", func() {
				So(base.USD.Equal(dec("0.99")), ShouldBeTrue)
				So(base.Reason, ShouldEqual, pricing.ReasonManual)
			})
		})

		Convey("When it is zero, negative or not finite", func() {
			for _, v := range []float64{0, -3, math.NaN(), math.Inf(1)} {
				base := pricing.InferBaseUSD("rpg", 12, ptr(v))
				So(base.Reason, ShouldEqual, pricing.ReasonInferred)
				So(base.USD.Equal(dec("19.99")), ShouldBeTrue)
			}
		})
	})
}

func TestLengthMultiplier(t *testing.T) {
	Convey("Given the length breakpoints", t, func() {
		Convey("Then upper bounds are inclusive", func() {
			So(pricing.LengthMultiplier(0).Equal(dec("0.80")), ShouldBeTrue)
			So(pricing.LengthMultiplier(3).Equal(dec("0.80")), ShouldBeTrue)
			So(pricing.LengthMultiplier(3.01).Equal(dec("0.95")), ShouldBeTrue)
			So(pricing.LengthMultiplier(8).Equal(dec("0.95")), ShouldBeTrue)
			So(pricing.LengthMultiplier(15).Equal(dec("1.00")), ShouldBeTrue)
			So(pricing.LengthMultiplier(30).Equal(dec("1.15")), ShouldBeTrue)
			So(pricing.LengthMultiplier(30.5).Equal(dec("1.30")), ShouldBeTrue)
		})
	})
}

func TestSnapToTier(t *testing.T) {
	Convey("Given the USD tier list", t, func() {
		Convey("When raw sits exactly between two tiers", func() {
			Convey("Then the lower tier wins", func() {
				So(pricing.SnapToTier(dec("5.49")).Equal(dec("4.99")), ShouldBeTrue)
			})
		})

		Convey("When raw is outside the list", func() {
			Convey("Then it snaps to the nearest end", func() {
				So(pricing.SnapToTier(dec("0.10")).Equal(dec("4.99")), ShouldBeTrue)
				So(pricing.SnapToTier(dec("500")).Equal(dec("69.99")), ShouldBeTrue)
			})
		})

		Convey("Then every result is a member of the tier list", func() {
			tiers := pricing.UsdPriceTiers()
			for _, raw := range []string{"3", "6.5", "13.3", "21", "47", "64.98"} {
				got := pricing.SnapToTier(dec(raw))
				found := false
				for _, tier := range tiers {
					if tier.Equal(got) {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			}
		})
	})
}
