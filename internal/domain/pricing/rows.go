package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/questline/pricing-planner/internal/domain/model"
)

// Placeholder is shown in place of a price that could not be computed.
const Placeholder = "..."

// RegionalPriceRow is the derived price for one country. List and Sale are
// invalid (and ListPrice/SalePrice nil) when no FX rate was available.
type RegionalPriceRow struct {
	Country      string
	CountryCode  string
	Currency     Currency
	Tier         TierID
	SuggestedUSD decimal.Decimal
	List         decimal.NullDecimal
	Sale         decimal.NullDecimal
	ListPrice    *string
	SalePrice    *string
}

// Priced reports whether the row carries prices.
func (r RegionalPriceRow) Priced() bool {
	return r.List.Valid
}

// Display returns the formatted list and sale prices, or the placeholder.
func (r RegionalPriceRow) Display() (list, sale string) {
	if r.ListPrice == nil || r.SalePrice == nil {
		return Placeholder, Placeholder
	}
	return *r.ListPrice, *r.SalePrice
}

// ClampDiscount coerces a discount fraction into [0, MaxDiscountFraction].
func ClampDiscount(fraction float64) float64 {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return 0
	}
	return math.Min(math.Max(fraction, 0), MaxDiscountFraction)
}

// ComputeRow prices one country. fx may be nil; USD and USD-group
// currencies never need it. A missing rate leaves the row unpriced rather
// than inventing a value.
func ComputeRow(baseUSD decimal.Decimal, country model.CountryProfile, fx model.FxRateTable, discountFraction float64) RegionalPriceRow {
	tier := LookupPPPTier(country.Name)
	currency := InferCurrency(country.Code, country.NativeCurrency())

	row := RegionalPriceRow{
		Country:      country.Name,
		CountryCode:  country.Code,
		Currency:     currency,
		Tier:         tier.ID,
		SuggestedUSD: baseUSD.Mul(tier.Factor),
	}

	local := row.SuggestedUSD
	if !currency.IsUSDDenominated() {
		rate, ok := fx.Rate(string(currency))
		if !ok {
			return row
		}
		local = local.Mul(decimal.NewFromFloat(rate))
	}

	list := Round(currency, local)
	// The discount applies to the rounded list price, then rounds again.
	keep := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(ClampDiscount(discountFraction)))
	sale := Round(currency, list.Mul(keep))

	listStr, saleStr := Format(currency, list), Format(currency, sale)
	row.List = decimal.NewNullDecimal(list)
	row.Sale = decimal.NewNullDecimal(sale)
	row.ListPrice = &listStr
	row.SalePrice = &saleStr
	return row
}

// Input is everything ComputeRegionalPrices needs. FxRates may be nil.
type Input struct {
	GenreID          string
	Hours            float64
	ManualUSD        *float64
	DiscountFraction float64
	Countries        []model.CountryProfile
	FxRates          model.FxRateTable
}

// Quote is the base price together with its regional rows.
type Quote struct {
	Base BasePrice
	Rows []RegionalPriceRow
}

// ComputeRegionalPrices returns exactly one row per input country, in input
// order. It never fails: missing data yields unpriced rows.
func ComputeRegionalPrices(in Input) []RegionalPriceRow {
	return ComputeQuote(in).Rows
}

// ComputeQuote is ComputeRegionalPrices that also returns the base price.
func ComputeQuote(in Input) Quote {
	base := InferBaseUSD(in.GenreID, in.Hours, in.ManualUSD)
	rows := make([]RegionalPriceRow, 0, len(in.Countries))
	for _, c := range in.Countries {
		rows = append(rows, ComputeRow(base.USD, c, in.FxRates, in.DiscountFraction))
	}
	return Quote{Base: base, Rows: rows}
}
