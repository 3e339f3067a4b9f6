package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/ranking"
)

// DashboardService is what the dashboard endpoints need from the service
// layer.
type DashboardService interface {
	Overview(ctx context.Context) (dashboard.OverviewView, error)
	Arbitrage(ctx context.Context, state ranking.SortState) (dashboard.ArbitrageView, error)
	Opportunity(ctx context.Context, id string) (ranking.Classified, error)
	Liquidity(ctx context.Context) (dashboard.LiquidityView, error)
	Analytics(ctx context.Context) (dashboard.AnalyticsView, error)
	Architecture(ctx context.Context) (dashboard.ArchitectureView, error)
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
}

// DashboardHandler serves the read-only dashboard views.
type DashboardHandler struct {
	svc    DashboardService
	logger *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(svc DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logHandler(logger, "dashboard")}
}

// Overview returns the key metrics header.
// GET /api/overview
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Overview(r.Context())
	if err != nil {
		fail(w, r, h.logger, "overview", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// parseSortState reads ?sort= and ?order=. Missing values fall back to the
// default column and, for an explicit column, descending order.
func parseSortState(r *http.Request) (ranking.SortState, error) {
	state := ranking.DefaultSortState()
	q := r.URL.Query()
	if v := q.Get("sort"); v != "" {
		key, err := ranking.ParseSortKey(v)
		if err != nil {
			return state, err
		}
		state.Key = key
	}
	if v := q.Get("order"); v != "" {
		dir, err := ranking.ParseDirection(v)
		if err != nil {
			return state, err
		}
		state.Direction = dir
	}
	return state, nil
}

// Arbitrage returns ranked opportunities.
// GET /api/arbitrage?sort=spread|profit&order=asc|desc
func (h *DashboardHandler) Arbitrage(w http.ResponseWriter, r *http.Request) {
	state, err := parseSortState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.svc.Arbitrage(r.Context(), state)
	if err != nil {
		fail(w, r, h.logger, "arbitrage", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Opportunity returns one classified opportunity.
// GET /api/arbitrage/{id}
func (h *DashboardHandler) Opportunity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing opportunity id")
		return
	}
	o, err := h.svc.Opportunity(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, "opportunity", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Liquidity returns the liquidity tab.
// GET /api/liquidity
func (h *DashboardHandler) Liquidity(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Liquidity(r.Context())
	if err != nil {
		fail(w, r, h.logger, "liquidity", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Analytics returns the missed-profit tab; 422 when there is no history.
// GET /api/analytics
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Analytics(r.Context())
	if err != nil {
		fail(w, r, h.logger, "analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Architecture returns the routing architecture description.
// GET /api/architecture
func (h *DashboardHandler) Architecture(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Architecture(r.Context())
	if err != nil {
		fail(w, r, h.logger, "architecture", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Snapshot returns every view from one load.
// GET /api/snapshot
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Snapshot(r.Context())
	if err != nil {
		fail(w, r, h.logger, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
