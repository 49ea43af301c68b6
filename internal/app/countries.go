package service

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/questline/pricing-planner/internal/domain/model"
	"github.com/questline/pricing-planner/pkg/logger"
	"github.com/questline/pricing-planner/pkg/metrics"
)

// Where a country list came from.
const (
	SourceCache    = "cache"
	SourceUpstream = "upstream"
	SourceFallback = "fallback"
)

const countryLoadKey = "countries"

// fallbackCountries is served when the dataset cannot be loaded. It covers
// the default featured list plus the most common storefront markets.
var fallbackCountries = []model.CountryProfile{ //nolint:gochecknoglobals // static table
	{Code: "US", Name: "United States", NativeCurrencyCodes: []string{"USD"}},
	{Code: "CA", Name: "Canada", NativeCurrencyCodes: []string{"CAD"}},
	{Code: "GB", Name: "United Kingdom", NativeCurrencyCodes: []string{"GBP"}},
	{Code: "DE", Name: "Germany", NativeCurrencyCodes: []string{"EUR"}},
	{Code: "FR", Name: "France", NativeCurrencyCodes: []string{"EUR"}},
	{Code: "ES", Name: "Spain", NativeCurrencyCodes: []string{"EUR"}},
	{Code: "IT", Name: "Italy", NativeCurrencyCodes: []string{"EUR"}},
	{Code: "NL", Name: "Netherlands", NativeCurrencyCodes: []string{"EUR"}},
	{Code: "SE", Name: "Sweden", NativeCurrencyCodes: []string{"SEK"}},
	{Code: "NO", Name: "Norway", NativeCurrencyCodes: []string{"NOK"}},
	{Code: "CH", Name: "Switzerland", NativeCurrencyCodes: []string{"CHF"}},
	{Code: "PL", Name: "Poland", NativeCurrencyCodes: []string{"PLN"}},
	{Code: "CZ", Name: "Czechia", NativeCurrencyCodes: []string{"CZK"}},
	{Code: "TR", Name: "Turkey", NativeCurrencyCodes: []string{"TRY"}},
	{Code: "UA", Name: "Ukraine", NativeCurrencyCodes: []string{"UAH"}},
	{Code: "KZ", Name: "Kazakhstan", NativeCurrencyCodes: []string{"KZT"}},
	{Code: "AM", Name: "Armenia", NativeCurrencyCodes: []string{"AMD"}},
	{Code: "BR", Name: "Brazil", NativeCurrencyCodes: []string{"BRL"}},
	{Code: "MX", Name: "Mexico", NativeCurrencyCodes: []string{"MXN"}},
	{Code: "AR", Name: "Argentina", NativeCurrencyCodes: []string{"ARS"}},
	{Code: "CL", Name: "Chile", NativeCurrencyCodes: []string{"CLP"}},
	{Code: "CO", Name: "Colombia", NativeCurrencyCodes: []string{"COP"}},
	{Code: "PE", Name: "Peru", NativeCurrencyCodes: []string{"PEN"}},
	{Code: "IN", Name: "India", NativeCurrencyCodes: []string{"INR"}},
	{Code: "PK", Name: "Pakistan", NativeCurrencyCodes: []string{"PKR"}},
	{Code: "ID", Name: "Indonesia", NativeCurrencyCodes: []string{"IDR"}},
	{Code: "VN", Name: "Vietnam", NativeCurrencyCodes: []string{"VND"}},
	{Code: "TH", Name: "Thailand", NativeCurrencyCodes: []string{"THB"}},
	{Code: "PH", Name: "Philippines", NativeCurrencyCodes: []string{"PHP"}},
	{Code: "MY", Name: "Malaysia", NativeCurrencyCodes: []string{"MYR"}},
	{Code: "SG", Name: "Singapore", NativeCurrencyCodes: []string{"SGD"}},
	{Code: "JP", Name: "Japan", NativeCurrencyCodes: []string{"JPY"}},
	{Code: "KR", Name: "South Korea", NativeCurrencyCodes: []string{"KRW"}},
	{Code: "CN", Name: "China", NativeCurrencyCodes: []string{"CNY"}},
	{Code: "TW", Name: "Taiwan", NativeCurrencyCodes: []string{"TWD"}},
	{Code: "AU", Name: "Australia", NativeCurrencyCodes: []string{"AUD"}},
	{Code: "NZ", Name: "New Zealand", NativeCurrencyCodes: []string{"NZD"}},
	{Code: "ZA", Name: "South Africa", NativeCurrencyCodes: []string{"ZAR"}},
	{Code: "EG", Name: "Egypt", NativeCurrencyCodes: []string{"EGP"}},
	{Code: "SA", Name: "Saudi Arabia", NativeCurrencyCodes: []string{"SAR"}},
	{Code: "AE", Name: "United Arab Emirates", NativeCurrencyCodes: []string{"AED"}},
}

// loadCountries returns the full dataset: cache first, then the upstream
// source (one in-flight load shared by all callers), then the bundled list.
func (s *Service) loadCountries(ctx context.Context) ([]model.CountryProfile, string) {
	list, ok, err := s.cache.Get(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("country_cache", "read")
		s.logger.Warn(ctx, "country cache read failed", logger.Error(err))
	}
	if ok {
		s.countryHits.Add(1)
		metrics.RecordCountryLoad(metrics.OutcomeCacheHit)
		return list, SourceCache
	}

	v, err, _ := s.loads.Do(countryLoadKey, func() (interface{}, error) {
		// Shared by every waiter; one caller's cancellation must not fail the rest.
		loadCtx := context.WithoutCancel(ctx)
		fetched, err := s.countries.Countries(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(loadCtx, fetched); err != nil {
			metrics.RecordErrorByComponent("country_cache", "write")
			s.logger.Warn(loadCtx, "country cache write failed", logger.Error(err))
		}
		s.countryLoads.Add(1)
		metrics.RecordCountryLoad(metrics.OutcomeOK)
		metrics.UpdateCountriesCached(len(fetched))
		return fetched, nil
	})
	if err != nil {
		s.fallbackLoads.Add(1)
		metrics.RecordCountryLoad(metrics.OutcomeFallback)
		s.logger.Warn(ctx, "country dataset unavailable, using bundled list", logger.Error(err))
		return slices.Clone(fallbackCountries), SourceFallback
	}

	loaded, _ := v.([]model.CountryProfile)
	return slices.Clone(loaded), SourceUpstream
}

// resolveCountries returns the countries to price. The featured subset keeps
// the configured order; the full list is sorted by name.
func (s *Service) resolveCountries(ctx context.Context, all bool) ([]model.CountryProfile, string) {
	list, source := s.loadCountries(ctx)

	if all {
		slices.SortStableFunc(list, func(a, b model.CountryProfile) int {
			return strings.Compare(a.Name, b.Name)
		})
		return list, source
	}

	byCode := lo.SliceToMap(list, func(c model.CountryProfile) (string, model.CountryProfile) {
		return c.Code, c
	})
	featured := lo.FilterMap(s.featured, func(code string, _ int) (model.CountryProfile, bool) {
		c, ok := byCode[code]
		return c, ok
	})
	return featured, source
}

func normalizeCodes(codes []string) []string {
	out := lo.FilterMap(codes, func(c string, _ int) (string, bool) {
		c = strings.ToUpper(strings.TrimSpace(c))
		return c, c != ""
	})
	return lo.Uniq(out)
}
