package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/quiverx/internal/dashboard"
)

// RefreshStatusProvider exposes background refresh counters.
type RefreshStatusProvider interface {
	Status() dashboard.Status
}

// BreakerStateProvider exposes a source circuit breaker state.
type BreakerStateProvider interface {
	State() string
}

// StatusHandler serves backend status for the dashboard header.
type StatusHandler struct {
	Source    string
	Version   string
	StartedAt time.Time
	Refresh   RefreshStatusProvider
	Breaker   BreakerStateProvider
}

// GetStatus returns source, uptime and refresher state.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"source":         h.Source,
		"version":        h.Version,
		"uptime_seconds": int64(time.Since(h.StartedAt).Seconds()),
	}
	if h.Refresh != nil {
		body["refresh"] = h.Refresh.Status()
	}
	if h.Breaker != nil {
		body["source_breaker"] = h.Breaker.State()
	}
	writeJSON(w, http.StatusOK, body)
}
