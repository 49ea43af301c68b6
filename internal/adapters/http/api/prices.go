package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/questline/pricing-planner/internal/domain/pricing"
	"github.com/questline/pricing-planner/internal/domain/types"
)

// PricesDependencies defines the interface for price calculations.
type PricesDependencies interface {
	Calculate(ctx context.Context, req types.QuoteRequest) (types.Quote, error)
	BasePrice(ctx context.Context, genre string, hours float64, manualUSD *float64) types.BasePrice
}

// PricesHandler handles price requests.
type PricesHandler struct {
	deps PricesDependencies
}

// NewPricesHandler creates a new prices handler.
func NewPricesHandler(deps PricesDependencies) *PricesHandler {
	return &PricesHandler{deps: deps}
}

// HandleRegional handles POST /api/v1/prices/regional.
func (h *PricesHandler) HandleRegional(w http.ResponseWriter, r *http.Request) {
	const op = "api.prices_regional"
	req, err := readRegional(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	quote, err := h.deps.Calculate(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, CodeInternalError, WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// HandleBase handles GET /api/v1/prices/base?genre=&hours=&manualUsd=.
func (h *PricesHandler) HandleBase(w http.ResponseWriter, r *http.Request) {
	const op = "api.prices_base"
	query := r.URL.Query()
	q := types.QuoteRequest{
		Genre:     strings.TrimSpace(query.Get("genre")),
		Hours:     pricing.ClampHours(parseNumber(query.Get("hours")).Or(0)),
		ManualUSD: parseNumber(query.Get("manualUsd")).Ptr(),
	}
	if err := validateQuote(r, q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.BasePrice(r.Context(), q.Genre, q.Hours, q.ManualUSD))
}
