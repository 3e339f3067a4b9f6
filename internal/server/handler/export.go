package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/quiverx/internal/export"
)

// Exporter uploads a snapshot to object storage.
type Exporter interface {
	Export(ctx context.Context) (export.Result, error)
}

// ExportHandler triggers snapshot exports.
type ExportHandler struct {
	exporter Exporter
	logger   *slog.Logger
}

// NewExportHandler creates an ExportHandler. A nil exporter answers 501.
func NewExportHandler(exporter Exporter, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, logger: logHandler(logger, "export")}
}

// Create runs one export.
// POST /api/snapshots
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusNotImplemented, "snapshot export is not configured")
		return
	}
	res, err := h.exporter.Export(r.Context())
	if err != nil {
		fail(w, r, h.logger, "export", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
