// Package model contains domain models passed between layers.
package model

import "strings"

// CountryProfile is a country as consumed from the reference dataset.
type CountryProfile struct {
	Code                string   `json:"code"`                // ISO 3166-1 alpha-2, upper case
	Name                string   `json:"name"`                // common English name, used for PPP lookup
	NativeCurrencyCodes []string `json:"nativeCurrencyCodes"` // dataset order preserved
}

// NativeCurrency returns the first listed native currency, or "" when the
// dataset lists none.
func (c CountryProfile) NativeCurrency() string {
	if len(c.NativeCurrencyCodes) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(c.NativeCurrencyCodes[0]))
}

// Valid reports whether the profile carries the fields the pipeline needs.
func (c CountryProfile) Valid() bool {
	return len(strings.TrimSpace(c.Code)) == 2 && strings.TrimSpace(c.Name) != ""
}
