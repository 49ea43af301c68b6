// Package pricing implements the regional price inference pipeline.
//
// Everything in this package is a pure function over static tables plus an
// FX rate table passed in by the caller. Nothing here performs I/O or keeps
// state between calls.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Genre identifies a genre profile.
type Genre string

// Supported genres.
const (
	GenreAction      Genre = "action"
	GenreAdventure   Genre = "adventure"
	GenreCasual      Genre = "casual"
	GenreHorror      Genre = "horror"
	GenreIndie       Genre = "indie"
	GenrePlatformer  Genre = "platformer"
	GenrePuzzle      Genre = "puzzle"
	GenreRoguelike   Genre = "roguelike"
	GenreRPG         Genre = "rpg"
	GenreShooter     Genre = "shooter"
	GenreSimulation  Genre = "simulation"
	GenreSports      Genre = "sports"
	GenreStrategy    Genre = "strategy"
	GenreVisualNovel Genre = "visual-novel"
)

// DefaultGenre is used when a genre id does not match any profile.
const DefaultGenre = GenreIndie

// GenreProfile is the anchor list price for a typical game of a genre.
type GenreProfile struct {
	ID      Genre
	Label   string
	BaseUSD decimal.Decimal
}

// genreProfiles is declared in display order.
var genreProfiles = []GenreProfile{ //nolint:gochecknoglobals // static table
	{ID: GenreAction, Label: "Action", BaseUSD: usd("19.99")},
	{ID: GenreAdventure, Label: "Adventure", BaseUSD: usd("19.99")},
	{ID: GenreCasual, Label: "Casual", BaseUSD: usd("7.99")},
	{ID: GenreHorror, Label: "Horror", BaseUSD: usd("14.99")},
	{ID: GenreIndie, Label: "Indie", BaseUSD: usd("14.99")},
	{ID: GenrePlatformer, Label: "Platformer", BaseUSD: usd("14.99")},
	{ID: GenrePuzzle, Label: "Puzzle", BaseUSD: usd("9.99")},
	{ID: GenreRoguelike, Label: "Roguelike", BaseUSD: usd("17.99")},
	{ID: GenreRPG, Label: "RPG", BaseUSD: usd("19.99")},
	{ID: GenreShooter, Label: "Shooter", BaseUSD: usd("24.99")},
	{ID: GenreSimulation, Label: "Simulation", BaseUSD: usd("19.99")},
	{ID: GenreSports, Label: "Sports", BaseUSD: usd("29.99")},
	{ID: GenreStrategy, Label: "Strategy", BaseUSD: usd("24.99")},
	{ID: GenreVisualNovel, Label: "Visual novel", BaseUSD: usd("9.99")},
}

// usdPriceTiers must stay in ascending order: snapping relies on it for
// first-seen-wins tie breaking.
var usdPriceTiers = []decimal.Decimal{ //nolint:gochecknoglobals // static table
	usd("4.99"), usd("5.99"), usd("6.99"), usd("7.99"), usd("8.99"),
	usd("9.99"), usd("11.99"), usd("12.99"), usd("14.99"), usd("17.99"),
	usd("19.99"), usd("24.99"), usd("29.99"), usd("34.99"), usd("39.99"),
	usd("44.99"), usd("49.99"), usd("59.99"), usd("69.99"),
}

// lengthBreakpoints maps inclusive upper bounds in hours to multipliers.
// Anything above the last bound gets longGameMultiplier.
var lengthBreakpoints = []struct { //nolint:gochecknoglobals // static table
	maxHours   float64
	multiplier decimal.Decimal
}{
	{maxHours: 3, multiplier: usd("0.80")},
	{maxHours: 8, multiplier: usd("0.95")},
	{maxHours: 15, multiplier: usd("1.00")},
	{maxHours: 30, multiplier: usd("1.15")},
}

var longGameMultiplier = usd("1.30") //nolint:gochecknoglobals // static table

// Limits applied to caller input.
const (
	MinHours            = 0
	MaxHours            = 999
	MaxDiscountFraction = 0.9
)

var minBaseUSD = usd("0.99") //nolint:gochecknoglobals // static table

// TierID identifies a PPP tier.
type TierID string

// PPP tiers.
const (
	TierA TierID = "A"
	TierB TierID = "B"
	TierC TierID = "C"
	TierD TierID = "D"
)

// DefaultTier applies to countries missing from the PPP table.
const DefaultTier = TierB

// PppTier is a coarse purchasing power bucket.
type PppTier struct {
	ID     TierID
	Label  string
	Factor decimal.Decimal
}

var pppTiers = map[TierID]PppTier{ //nolint:gochecknoglobals // static table
	TierA: {ID: TierA, Label: "High income", Factor: usd("1.00")},
	TierB: {ID: TierB, Label: "Upper middle", Factor: usd("0.85")},
	TierC: {ID: TierC, Label: "Lower middle", Factor: usd("0.70")},
	TierD: {ID: TierD, Label: "Low income", Factor: usd("0.55")},
}

// countryTiers is keyed by the dataset's common country name. Lookups are
// exact and case-sensitive.
var countryTiers = map[string]TierID{ //nolint:gochecknoglobals // static table
	// A
	"United States":        TierA,
	"Canada":               TierA,
	"United Kingdom":       TierA,
	"Ireland":              TierA,
	"Germany":              TierA,
	"France":               TierA,
	"Netherlands":          TierA,
	"Belgium":              TierA,
	"Luxembourg":           TierA,
	"Austria":              TierA,
	"Switzerland":          TierA,
	"Liechtenstein":        TierA,
	"Denmark":              TierA,
	"Sweden":               TierA,
	"Norway":               TierA,
	"Finland":              TierA,
	"Iceland":              TierA,
	"Italy":                TierA,
	"Spain":                TierA,
	"Australia":            TierA,
	"New Zealand":          TierA,
	"Japan":                TierA,
	"South Korea":          TierA,
	"Taiwan":               TierA,
	"Singapore":            TierA,
	"Hong Kong":            TierA,
	"Macau":                TierA,
	"Israel":               TierA,
	"Qatar":                TierA,
	"United Arab Emirates": TierA,
	"Kuwait":               TierA,
	"Monaco":               TierA,
	"Andorra":              TierA,
	"San Marino":           TierA,
	// B
	"Portugal":     TierB,
	"Greece":       TierB,
	"Czechia":      TierB,
	"Slovakia":     TierB,
	"Slovenia":     TierB,
	"Estonia":      TierB,
	"Latvia":       TierB,
	"Lithuania":    TierB,
	"Poland":       TierB,
	"Hungary":      TierB,
	"Croatia":      TierB,
	"Cyprus":       TierB,
	"Malta":        TierB,
	"Saudi Arabia": TierB,
	"Bahrain":      TierB,
	"Oman":         TierB,
	"Chile":        TierB,
	"Uruguay":      TierB,
	"Costa Rica":   TierB,
	"Panama":       TierB,
	"Malaysia":     TierB,
	"China":        TierB,
	// C
	"Mexico":             TierC,
	"Brazil":             TierC,
	"Argentina":          TierC,
	"Colombia":           TierC,
	"Peru":               TierC,
	"Ecuador":            TierC,
	"Paraguay":           TierC,
	"Bolivia":            TierC,
	"Guatemala":          TierC,
	"Dominican Republic": TierC,
	"Russia":             TierC,
	"Kazakhstan":         TierC,
	"Turkey":             TierC,
	"Türkiye":            TierC,
	"Romania":            TierC,
	"Bulgaria":           TierC,
	"Serbia":             TierC,
	"Ukraine":            TierC,
	"Georgia":            TierC,
	"Armenia":            TierC,
	"Azerbaijan":         TierC,
	"Belarus":            TierC,
	"Moldova":            TierC,
	"Thailand":           TierC,
	"Indonesia":          TierC,
	"Philippines":        TierC,
	"Vietnam":            TierC,
	"South Africa":       TierC,
	"Morocco":            TierC,
	"Tunisia":            TierC,
	"Algeria":            TierC,
	"Jordan":             TierC,
	"Lebanon":            TierC,
	// D
	"India":       TierD,
	"Pakistan":    TierD,
	"Bangladesh":  TierD,
	"Nepal":       TierD,
	"Sri Lanka":   TierD,
	"Egypt":       TierD,
	"Nigeria":     TierD,
	"Kenya":       TierD,
	"Ghana":       TierD,
	"Ethiopia":    TierD,
	"Uzbekistan":  TierD,
	"Kyrgyzstan":  TierD,
	"Tajikistan":  TierD,
	"Venezuela":   TierD,
	"Honduras":    TierD,
	"Nicaragua":   TierD,
	"Myanmar":     TierD,
	"Cambodia":    TierD,
	"Laos":        TierD,
	"Afghanistan": TierD,
	"Yemen":       TierD,
	"Iraq":        TierD,
}

// Currency is a storefront currency token: an ISO 4217 code or a regional
// USD group such as USD_CIS.
type Currency string

// Currencies referenced by the inference rules.
const (
	USD      Currency = "USD"
	EUR      Currency = "EUR"
	USDCIS   Currency = "USD_CIS"
	USDLATAM Currency = "USD_LATAM"
	USDMENA  Currency = "USD_MENA"
	USDSASIA Currency = "USD_SASIA"
)

// regionalGroup is a set of countries priced in a discounted USD band.
type regionalGroup struct {
	currency  Currency
	countries map[string]struct{}
}

// regionalGroups are checked in order; the sets are disjoint.
var regionalGroups = []regionalGroup{ //nolint:gochecknoglobals // static table
	{currency: USDCIS, countries: codeSet("AM", "AZ", "BY", "GE", "KG", "MD", "TJ", "TM", "UZ")},
	{currency: USDLATAM, countries: codeSet("AR", "BO", "BZ", "EC", "GT", "HN", "NI", "PA", "PY", "SV", "VE")},
	{currency: USDMENA, countries: codeSet("BH", "DZ", "EG", "IQ", "JO", "LB", "LY", "MA", "OM", "PS", "TN", "TR", "YE")},
	{currency: USDSASIA, countries: codeSet("BD", "BT", "LK", "MV", "NP", "PK")},
}

// supportedCurrencies are the currencies the storefront prices in.
var supportedCurrencies = map[Currency]struct{}{ //nolint:gochecknoglobals // static table
	"USD": {}, "EUR": {}, "GBP": {}, "CHF": {}, "NOK": {}, "PLN": {},
	"RUB": {}, "UAH": {}, "KZT": {}, "JPY": {}, "KRW": {}, "CNY": {},
	"HKD": {}, "TWD": {}, "SGD": {}, "MYR": {}, "THB": {}, "IDR": {},
	"PHP": {}, "VND": {}, "INR": {}, "AUD": {}, "NZD": {}, "CAD": {},
	"MXN": {}, "BRL": {}, "CLP": {}, "COP": {}, "PEN": {}, "UYU": {},
	"CRC": {}, "ILS": {}, "SAR": {}, "AED": {}, "QAR": {}, "KWD": {},
	"ZAR": {},
}

// europeCountries fall back to EUR when their native currency is not
// supported.
var europeCountries = codeSet( //nolint:gochecknoglobals // static table
	"AD", "AL", "AT", "BA", "BE", "BG", "CY", "CZ", "DE", "DK", "EE", "ES",
	"FI", "FR", "GR", "HR", "HU", "IE", "IS", "IT", "LI", "LT", "LU", "LV",
	"MC", "ME", "MK", "MT", "NL", "PT", "RO", "RS", "SE", "SI", "SK", "SM",
	"VA", "XK",
)

// roundingSteps holds integer rounding units. Currencies not listed round to
// two decimal places.
var roundingSteps = map[Currency]int64{ //nolint:gochecknoglobals // static table
	"JPY": 1,
	"KRW": 1000,
	"VND": 50000,
	"IDR": 100,
	"CLP": 10,
	"COP": 100,
	"KZT": 10,
	"TWD": 1,
	"CRC": 10,
}

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func codeSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}
