// Package export uploads dashboard snapshots to object storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/notify"
)

const lockKey = "export"

// SnapshotProvider builds a fresh snapshot.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
}

// Notifier is the subset of notify.Notifier used after an upload.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Config controls key layout and locking.
type Config struct {
	Prefix  string
	LockTTL time.Duration
}

// Result describes one completed export.
type Result struct {
	SnapshotID string    `json:"snapshot_id"`
	Keys       []string  `json:"keys"`
	Bytes      int       `json:"bytes"`
	At         time.Time `json:"at"`
}

// Exporter writes a snapshot document and the daily series as JSONL. Only
// one export runs at a time across all replicas sharing the lock manager.
type Exporter struct {
	snaps    SnapshotProvider
	writer   domain.BlobWriter
	locks    domain.LockManager
	notifier Notifier
	cfg      Config
	logger   *slog.Logger
}

// New creates an Exporter. notifier may be nil.
func New(snaps SnapshotProvider, writer domain.BlobWriter, locks domain.LockManager, notifier Notifier, cfg Config, logger *slog.Logger) *Exporter {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &Exporter{
		snaps:    snaps,
		writer:   writer,
		locks:    locks,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "exporter")),
	}
}

// Export takes the export lock, builds a snapshot and uploads it. It returns
// domain.ErrLockHeld when another export is in progress.
func (e *Exporter) Export(ctx context.Context) (Result, error) {
	unlock, err := e.locks.Acquire(ctx, lockKey, e.cfg.LockTTL)
	if err != nil {
		return Result{}, fmt.Errorf("export: %w", err)
	}
	defer unlock()

	snap, err := e.snaps.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("export: snapshot: %w", err)
	}

	res := Result{SnapshotID: snap.ID, At: snap.GeneratedAt}

	doc, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("export: marshal snapshot: %w", err)
	}
	key := snapshotKey(e.cfg.Prefix, snap)
	if err := e.writer.Put(ctx, key, bytes.NewReader(doc), "application/json"); err != nil {
		return Result{}, fmt.Errorf("export: upload snapshot: %w", err)
	}
	res.Keys = append(res.Keys, key)
	res.Bytes += len(doc)

	if snap.Analytics != nil && len(snap.Analytics.Daily) > 0 {
		lines, err := marshalJSONL(snap.Analytics.Daily)
		if err != nil {
			return Result{}, fmt.Errorf("export: marshal history: %w", err)
		}
		hkey := historyKey(e.cfg.Prefix, snap)
		if err := e.writer.Put(ctx, hkey, bytes.NewReader(lines), "application/x-ndjson"); err != nil {
			return Result{}, fmt.Errorf("export: upload history: %w", err)
		}
		res.Keys = append(res.Keys, hkey)
		res.Bytes += len(lines)
	}

	e.logger.InfoContext(ctx, "snapshot exported",
		slog.String("snapshot_id", snap.ID),
		slog.Any("keys", res.Keys),
		slog.Int("bytes", res.Bytes),
	)
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, notify.EventExport, "Snapshot exported", key); err != nil {
			e.logger.WarnContext(ctx, "export notification failed", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

// ListSnapshots returns the snapshot documents under prefix, newest first.
func ListSnapshots(ctx context.Context, reader domain.BlobReader, prefix string) ([]domain.BlobInfo, error) {
	infos, err := reader.List(ctx, path.Join(prefix, "snapshots")+"/")
	if err != nil {
		return nil, fmt.Errorf("export: list snapshots: %w", err)
	}
	out := make([]domain.BlobInfo, 0, len(infos))
	for _, info := range infos {
		if strings.HasSuffix(info.Path, ".json") {
			out = append(out, info)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.BlobInfo) int {
		if c := b.LastModified.Compare(a.LastModified); c != 0 {
			return c
		}
		return strings.Compare(b.Path, a.Path)
	})
	return out, nil
}

// snapshotKey partitions by UTC day:
//
//	<prefix>/snapshots/2024/01/08/<id>.json
func snapshotKey(prefix string, snap dashboard.Snapshot) string {
	return path.Join(prefix, "snapshots", snap.GeneratedAt.UTC().Format("2006/01/02"), snap.ID+".json")
}

// historyKey is the JSONL companion of snapshotKey.
func historyKey(prefix string, snap dashboard.Snapshot) string {
	return path.Join(prefix, "history", snap.GeneratedAt.UTC().Format("2006/01/02"), snap.ID+".jsonl")
}

// marshalJSONL writes one compact JSON document per line.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
