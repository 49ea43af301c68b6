package api

import (
	"context"
	"net/http"

	"github.com/questline/pricing-planner/internal/domain/types"
)

// CatalogDependencies exposes the read-only tables and FX state.
type CatalogDependencies interface {
	Genres() []types.Genre
	Tiers() []types.Tier
	FxStatus(ctx context.Context) types.FxInfo
	RefreshRates(ctx context.Context) types.FxInfo
}

// CatalogHandler serves the static tables.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGenres handles GET /api/v1/genres.
func (h *CatalogHandler) HandleGenres(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Genres())
}

// HandleTiers handles GET /api/v1/ppp-tiers.
func (h *CatalogHandler) HandleTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Tiers())
}

// HandleFx handles GET /api/v1/fx.
func (h *CatalogHandler) HandleFx(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.FxStatus(r.Context()))
}

// HandleFxRefresh handles POST /api/v1/fx/refresh. A failed fetch is not an
// HTTP error; it is reported in the returned status.
func (h *CatalogHandler) HandleFxRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.RefreshRates(r.Context()))
}
