package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// RefreshLog replays the stream the refresher appends to.
type RefreshLog interface {
	StreamRead(ctx context.Context, stream, lastID string, count int) ([]domain.StreamMessage, error)
}

// RefreshHistoryHandler serves past refresh events.
type RefreshHistoryHandler struct {
	log    RefreshLog
	logger *slog.Logger
}

// NewRefreshHistoryHandler creates a RefreshHistoryHandler. A nil log answers
// 501.
func NewRefreshHistoryHandler(log RefreshLog, logger *slog.Logger) *RefreshHistoryHandler {
	return &RefreshHistoryHandler{log: log, logger: logHandler(logger, "refreshes")}
}

type refreshEntry struct {
	ID    string                 `json:"id"`
	Event dashboard.RefreshEvent `json:"event"`
}

type refreshPage struct {
	Events []refreshEntry `json:"events"`
	// Next is passed back as ?after= to continue.
	Next string `json:"next"`
}

// List returns refresh events after an entry ID, oldest first.
// GET /api/refreshes?after=<id>&limit=<n>
func (h *RefreshHistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.log == nil {
		writeError(w, http.StatusNotImplemented, "refresh history is not configured")
		return
	}

	q := r.URL.Query()
	after := q.Get("after")
	if after == "" {
		after = "0"
	}
	if !validStreamID(after) {
		writeError(w, http.StatusBadRequest, "after must be a stream entry id such as 1704715200000-0")
		return
	}
	limit := defaultHistoryLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	msgs, err := h.log.StreamRead(r.Context(), dashboard.StreamRefresh, after, limit)
	if err != nil {
		fail(w, r, h.logger, "refresh history", err)
		return
	}

	page := refreshPage{Events: make([]refreshEntry, 0, len(msgs)), Next: after}
	for _, m := range msgs {
		page.Next = m.ID
		var ev dashboard.RefreshEvent
		if err := json.Unmarshal(m.Payload, &ev); err != nil {
			h.logger.WarnContext(r.Context(), "skipping malformed refresh entry",
				slog.String("id", m.ID), slog.String("error", err.Error()))
			continue
		}
		page.Events = append(page.Events, refreshEntry{ID: m.ID, Event: ev})
	}
	writeJSON(w, http.StatusOK, page)
}

// validStreamID accepts "<ms>" or "<ms>-<seq>".
func validStreamID(id string) bool {
	ms, seq, hasSeq := strings.Cut(id, "-")
	if _, err := strconv.ParseUint(ms, 10, 64); err != nil {
		return false
	}
	if hasSeq {
		if _, err := strconv.ParseUint(seq, 10, 64); err != nil {
			return false
		}
	}
	return true
}
