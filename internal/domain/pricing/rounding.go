package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const minorUnitPlaces = 2

// RoundingStep returns the integer rounding unit for c, if it has one.
func RoundingStep(c Currency) (int64, bool) {
	step, ok := roundingSteps[c.RoundingCurrency()]
	return step, ok
}

// DecimalPlaces is the number of decimals shown for c.
func DecimalPlaces(c Currency) int {
	if _, ok := RoundingStep(c); ok {
		return 0
	}
	return minorUnitPlaces
}

// Round applies the currency rounding rule: nearest multiple of the step for
// stepped currencies, two decimal places otherwise. Halves round away from
// zero.
func Round(c Currency, amount decimal.Decimal) decimal.Decimal {
	if step, ok := RoundingStep(c); ok {
		s := decimal.NewFromInt(step)
		return amount.Div(s).Round(0).Mul(s)
	}
	return amount.Round(minorUnitPlaces)
}

// ApplyRounding is Round for float64 callers.
func ApplyRounding(c Currency, amount float64) float64 {
	return Round(c, decimal.NewFromFloat(amount)).InexactFloat64()
}

// Format renders an already rounded amount with thousands separators and the
// currency's fixed number of decimals, e.g. "1,234.50" or "13,000". The
// digits come from the decimal itself, so large amounts stay exact.
func Format(c Currency, amount decimal.Decimal) string {
	places := int32(DecimalPlaces(c))
	r := amount.Round(places)
	whole, frac, _ := strings.Cut(r.Abs().StringFixed(places), ".")

	var b strings.Builder
	if r.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(whole))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// groupThousands inserts separators into a string of digits. Values wider
// than int64 are returned ungrouped.
func groupThousands(digits string) string {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits
	}
	return message.NewPrinter(language.English).Sprint(number.Decimal(n))
}
