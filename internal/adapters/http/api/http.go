// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/questline/pricing-planner/internal/domain/types"
	"github.com/questline/pricing-planner/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Calculate prices a quote request across the selected countries.
	Calculate(ctx context.Context, req types.QuoteRequest) (types.Quote, error)
	// BasePrice runs base price inference only.
	BasePrice(ctx context.Context, genre string, hours float64, manualUSD *float64) types.BasePrice

	// Read operations expose the static tables and the FX state.
	Genres() []types.Genre
	Tiers() []types.Tier
	FxStatus(ctx context.Context) types.FxInfo
	// RefreshRates forces an FX fetch.
	RefreshRates(ctx context.Context) types.FxInfo
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	pricesHandler  *PricesHandler
	catalogHandler *CatalogHandler
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		pricesHandler:  NewPricesHandler(deps),
		catalogHandler: NewCatalogHandler(deps),
		logger:         logger.Named("api"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.Handle(pattern, Chain(MetricsMiddleware(h, endpoint), Recovery(s.logger), TraceID))
	}

	handle("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	handle("GET /stats", "stats", s.statsHandler.HandleStats)
	handle("POST /api/v1/prices/regional", "prices_regional", s.pricesHandler.HandleRegional)
	handle("GET /api/v1/prices/base", "prices_base", s.pricesHandler.HandleBase)
	handle("GET /api/v1/genres", "genres", s.catalogHandler.HandleGenres)
	handle("GET /api/v1/ppp-tiers", "ppp_tiers", s.catalogHandler.HandleTiers)
	handle("GET /api/v1/fx", "fx", s.catalogHandler.HandleFx)
	handle("POST /api/v1/fx/refresh", "fx_refresh", s.catalogHandler.HandleFxRefresh)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
