package pricing

import (
	"strings"
)

// IsUSDGroup reports whether c is a regional USD band such as USD_CIS.
func (c Currency) IsUSDGroup() bool {
	return strings.HasPrefix(string(c), string(USD)+"_")
}

// IsUSDDenominated reports whether prices in c are USD amounts that skip FX
// conversion.
func (c Currency) IsUSDDenominated() bool {
	return c == USD || c.IsUSDGroup()
}

// RoundingCurrency is the currency whose rounding rule applies to c. USD
// groups round like plain USD. This must not be used for FX lookups.
func (c Currency) RoundingCurrency() Currency {
	if c.IsUSDGroup() {
		return USD
	}
	return c
}

// IsSupported reports whether the storefront prices in c.
func IsSupported(c Currency) bool {
	_, ok := supportedCurrencies[c]
	return ok
}

// InferCurrency picks the storefront currency for a country. Rules are
// checked in order and the first match wins:
//
//  1. regional USD group of the country
//  2. native currency, if supported
//  3. EUR for the Europe set
//  4. USD
//
// Groups come before native currency: several group members have a native
// currency the storefront supports but does not price them in.
func InferCurrency(countryCode, nativeCurrency string) Currency {
	code := strings.ToUpper(strings.TrimSpace(countryCode))

	for _, g := range regionalGroups {
		if _, ok := g.countries[code]; ok {
			return g.currency
		}
	}

	native := Currency(strings.ToUpper(strings.TrimSpace(nativeCurrency)))
	if native != "" && IsSupported(native) {
		return native
	}

	if _, ok := europeCountries[code]; ok {
		return EUR
	}

	return USD
}

// LookupPPPTier returns the PPP tier for an exact country name, falling back
// to DefaultTier.
func LookupPPPTier(countryName string) PppTier {
	if id, ok := countryTiers[countryName]; ok {
		return pppTiers[id]
	}
	return pppTiers[DefaultTier]
}

// PppTiers returns the tiers ordered A to D.
func PppTiers() []PppTier {
	return []PppTier{pppTiers[TierA], pppTiers[TierB], pppTiers[TierC], pppTiers[TierD]}
}
