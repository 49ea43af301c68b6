// Package types contains the wire shapes shared by the HTTP API and the CLI.
package types

import "time"

// PriceRow is one country in a quote. ListPrice and SalePrice are null when
// no FX rate was available for the row's currency.
type PriceRow struct {
	Country      string  `json:"country"`
	CountryCode  string  `json:"countryCode"`
	Currency     string  `json:"currency"`
	PPPTier      string  `json:"pppTier"`
	SuggestedUSD string  `json:"suggestedUsd"`
	ListPrice    *string `json:"listPrice"`
	SalePrice    *string `json:"salePrice"`
}

// BasePrice is the inferred or manual USD anchor.
type BasePrice struct {
	USD    string  `json:"usd"`
	Reason string  `json:"reason"`
	Genre  string  `json:"genre"`
	Hours  float64 `json:"hours"`
}

// FxInfo describes the rates a quote was priced with.
type FxInfo struct {
	Status     string     `json:"status"`
	Sequence   uint64     `json:"sequence"`
	FetchedAt  *time.Time `json:"fetchedAt,omitempty"`
	Rates      int        `json:"rates"`
	Reused     bool       `json:"reused"`
	Superseded bool       `json:"superseded"`
	Error      string     `json:"error,omitempty"`
}

// Quote is the result of a regional price calculation.
type Quote struct {
	ID              string     `json:"id"`
	Base            BasePrice  `json:"base"`
	DiscountPercent float64    `json:"discountPercent"`
	AllCountries    bool       `json:"allCountries"`
	CountrySource   string     `json:"countrySource"`
	Rows            []PriceRow `json:"rows"`
	Fx              FxInfo     `json:"fx"`
	ComputedAt      time.Time  `json:"computedAt"`
}

// Genre is a genre table entry.
type Genre struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	BaseUSD string `json:"baseUsd"`
}

// Tier is a PPP tier table entry.
type Tier struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Factor string `json:"factor"`
}

// Placeholder is what clients display for a null price.
const Placeholder = "..."

// Display returns the list and sale price strings, or the placeholder.
func (r PriceRow) Display() (list, sale string) {
	if r.ListPrice == nil || r.SalePrice == nil {
		return Placeholder, Placeholder
	}
	return *r.ListPrice, *r.SalePrice
}

// QuoteRequest asks for a regional price calculation.
type QuoteRequest struct {
	Genre           string   `json:"genre"`
	Hours           float64  `json:"hours"`
	ManualUSD       *float64 `json:"manualUsd,omitempty"`
	DiscountPercent float64  `json:"discountPercent"` // 0..90
	AllCountries    bool     `json:"allCountries"`
	// ReuseRates prices with the current FX snapshot instead of fetching,
	// as long as some fetch has completed before.
	ReuseRates bool `json:"reuseRates"`
}
