package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// BaseReason tells where a base price came from.
type BaseReason string

const (
	ReasonManual   BaseReason = "manual"
	ReasonInferred BaseReason = "inferred"
)

// BasePrice is the USD anchor price the regional rows are derived from.
type BasePrice struct {
	USD    decimal.Decimal
	Reason BaseReason
	Genre  Genre
	Hours  float64 // clamped input
}

// Genres returns the genre table in display order.
func Genres() []GenreProfile {
	out := make([]GenreProfile, len(genreProfiles))
	copy(out, genreProfiles)
	return out
}

// LookupGenre finds a profile by id. The second return is false when the id
// is unknown and the default genre was used instead.
func LookupGenre(id string) (GenreProfile, bool) {
	key := Genre(strings.ToLower(strings.TrimSpace(id)))
	for _, g := range genreProfiles {
		if g.ID == key {
			return g, true
		}
	}
	for _, g := range genreProfiles {
		if g.ID == DefaultGenre {
			return g, false
		}
	}
	// DefaultGenre is always present in genreProfiles.
	return genreProfiles[0], false
}

// UsdPriceTiers returns the allowed USD list prices in ascending order.
func UsdPriceTiers() []decimal.Decimal {
	out := make([]decimal.Decimal, len(usdPriceTiers))
	copy(out, usdPriceTiers)
	return out
}

// ClampHours coerces hours into [MinHours, MaxHours]. NaN and infinities
// count as zero.
func ClampHours(hours float64) float64 {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0
	}
	return math.Min(math.Max(hours, MinHours), MaxHours)
}

// LengthMultiplier maps clamped hours to the length multiplier. Breakpoints
// are inclusive on the upper bound, so 0h and 3h share 0.80.
func LengthMultiplier(hours float64) decimal.Decimal {
	h := ClampHours(hours)
	for _, bp := range lengthBreakpoints {
		if h <= bp.maxHours {
			return bp.multiplier
		}
	}
	return longGameMultiplier
}

// SnapToTier returns the tier nearest to raw. On equal distance the lower
// tier wins because tiers are scanned in ascending order.
func SnapToTier(raw decimal.Decimal) decimal.Decimal {
	best := usdPriceTiers[0]
	bestDiff := raw.Sub(best).Abs()
	for _, tier := range usdPriceTiers[1:] {
		if diff := raw.Sub(tier).Abs(); diff.LessThan(bestDiff) {
			best, bestDiff = tier, diff
		}
	}
	return best
}

// InferBaseUSD computes the USD anchor price. manualUSD replaces the inferred
// value when it is a finite positive number and is kept to whole cents. The
// result is never below 0.99.
func InferBaseUSD(genreID string, hours float64, manualUSD *float64) BasePrice {
	profile, _ := LookupGenre(genreID)
	h := ClampHours(hours)

	out := BasePrice{
		Genre:  profile.ID,
		Hours:  h,
		Reason: ReasonInferred,
		USD:    SnapToTier(profile.BaseUSD.Mul(LengthMultiplier(h))),
	}

	if manualUSD != nil && isFinitePositive(*manualUSD) {
		out.USD = decimal.NewFromFloat(*manualUSD).Round(minorUnitPlaces)
		out.Reason = ReasonManual
	}

	out.USD = decimal.Max(out.USD, minBaseUSD)
	return out
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
