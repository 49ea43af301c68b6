package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/questline/pricing-planner/internal/domain/pricing"
	"github.com/questline/pricing-planner/internal/domain/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // shared validator

// Number is a lenient JSON number. It accepts numbers and numeric strings;
// anything else, including null, leaves it unset instead of failing.
type Number struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil //nolint:nilerr // junk counts as unset
		}
		s = unq
	}
	*n = parseNumber(s)
	return nil
}

// Or returns the value, or def when unset.
func (n Number) Or(def float64) float64 {
	if !n.Set {
		return def
	}
	return n.Value
}

// Ptr returns a pointer to the value, or nil when unset.
func (n Number) Ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

func parseNumber(s string) Number {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Set: true}
}

// regionalRequest mirrors the OpenAPI schema for POST /api/v1/prices/regional.
type regionalRequest struct {
	Genre           string `json:"genre"`
	Hours           Number `json:"hours"`
	ManualUSD       Number `json:"manualUsd"`
	DiscountPercent Number `json:"discountPercent"`
	AllCountries    bool   `json:"allCountries"`
	ReuseRates      bool   `json:"reuseRates"`
}

// quoteParams is the normalized request the validator checks. Hours are
// clamped rather than validated.
type quoteParams struct {
	Genre           string  `validate:"max=64"`
	DiscountPercent float64 `validate:"gte=0,lte=90"`
}

func (r regionalRequest) toQuoteRequest() types.QuoteRequest {
	return types.QuoteRequest{
		Genre:           strings.TrimSpace(r.Genre),
		Hours:           pricing.ClampHours(r.Hours.Or(0)),
		ManualUSD:       r.ManualUSD.Ptr(),
		DiscountPercent: r.DiscountPercent.Or(0),
		AllCountries:    r.AllCountries,
		ReuseRates:      r.ReuseRates,
	}
}

func validateQuote(r *http.Request, q types.QuoteRequest) error {
	p := quoteParams{Genre: q.Genre, DiscountPercent: q.DiscountPercent}
	if err := validate.StructCtx(r.Context(), p); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func readRegional(r *http.Request) (types.QuoteRequest, error) {
	var req regionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return types.QuoteRequest{}, fmt.Errorf("json.Decode: %w", err)
	}
	q := req.toQuoteRequest()
	if err := validateQuote(r, q); err != nil {
		return types.QuoteRequest{}, err
	}
	return q, nil
}
