package pricing_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/questline/pricing-planner/internal/domain/pricing"
)

func TestRounding(t *testing.T) {
	Convey("Given stepped currencies", t, func() {
		So(pricing.ApplyRounding("JPY", 1000.4), ShouldEqual, 1000)
		So(pricing.ApplyRounding("KRW", 12500), ShouldEqual, 13000)
		So(pricing.ApplyRounding("VND", 1234567), ShouldEqual, 1250000)
		So(pricing.ApplyRounding("IDR", 149949), ShouldEqual, 149900)

		Convey("Then rounding is idempotent", func() {
			for _, c := range []pricing.Currency{"JPY", "KRW", "VND", "CLP", "EUR", pricing.USDCIS} {
				for _, v := range []string{"0.004", "12.345", "1000.5", "98765.4321"} {
					once := pricing.Round(c, dec(v))
					So(pricing.Round(c, once).Equal(once), ShouldBeTrue)
				}
			}
		})
	})

	Convey("Given two decimal currencies", t, func() {
		Convey("Then halves round away from zero", func() {
			So(pricing.Round(pricing.EUR, dec("1.005")).Equal(dec("1.01")), ShouldBeTrue)
			So(pricing.Round(pricing.USD, dec("14.712")).Equal(dec("14.71")), ShouldBeTrue)
		})

		Convey("Then USD groups round like USD", func() {
			So(pricing.DecimalPlaces(pricing.USDLATAM), ShouldEqual, 2)
			_, stepped := pricing.RoundingStep(pricing.USDLATAM)
			So(stepped, ShouldBeFalse)
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Given rounded amounts", t, func() {
		So(pricing.Format(pricing.EUR, dec("1234.5")), ShouldEqual, "1,234.50")
		So(pricing.Format(pricing.USD, dec("7")), ShouldEqual, "7.00")
		So(pricing.Format("KRW", dec("13000")), ShouldEqual, "13,000")
		So(pricing.Format("JPY", dec("999")), ShouldEqual, "999")
	})

	Convey("Given amounts beyond float64 precision", t, func() {
		So(pricing.Format("KRW", dec("123456789012345678")), ShouldEqual, "123,456,789,012,345,678")
		So(pricing.Format(pricing.EUR, dec("98765432109876.54")), ShouldEqual, "98,765,432,109,876.54")
	})

	Convey("Given a negative amount", t, func() {
		So(pricing.Format(pricing.EUR, dec("-1234.5")), ShouldEqual, "-1,234.50")
	})
}
