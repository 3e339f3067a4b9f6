package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/cache/memory"
	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/domain"
)

type memWriter struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemWriter() *memWriter {
	return &memWriter{objects: map[string][]byte{}, types: map[string]string{}}
}

func (w *memWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	if w.err != nil {
		return w.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.objects[path] = buf.Bytes()
	w.types[path] = contentType
	return nil
}

type fixedSnapshots struct{ snap dashboard.Snapshot }

func (f fixedSnapshots) Snapshot(context.Context) (dashboard.Snapshot, error) { return f.snap, nil }

func testSnapshot() dashboard.Snapshot {
	return dashboard.Snapshot{
		ID:          "6f1c2d1e-0000-4000-8000-000000000001",
		GeneratedAt: time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC),
		Analytics: &dashboard.AnalyticsView{
			Daily: []domain.DailyRecord{
				{Date: "2024-01-01", MissedProfit: 8420, Opportunities: 23, AvgSpread: 1.8},
				{Date: "2024-01-02", MissedProfit: 12150, Opportunities: 31, AvgSpread: 2.1},
			},
		},
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestExportWritesSnapshotAndHistory(t *testing.T) {
	w := newMemWriter()
	e := New(fixedSnapshots{testSnapshot()}, w, memory.NewLockManager(), nil, Config{Prefix: "quiverx"}, discard())

	res, err := e.Export(context.Background())
	require.NoError(t, err)

	snapKey := "quiverx/snapshots/2024/01/08/6f1c2d1e-0000-4000-8000-000000000001.json"
	histKey := "quiverx/history/2024/01/08/6f1c2d1e-0000-4000-8000-000000000001.jsonl"
	assert.Equal(t, []string{snapKey, histKey}, res.Keys)
	assert.Equal(t, "application/json", w.types[snapKey])
	assert.Equal(t, "application/x-ndjson", w.types[histKey])

	lines := strings.Split(strings.TrimSpace(string(w.objects[histKey])), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"missed_profit":8420`)
	assert.Equal(t, len(w.objects[snapKey])+len(w.objects[histKey]), res.Bytes)
}

func TestExportRespectsLock(t *testing.T) {
	locks := memory.NewLockManager()
	unlock, err := locks.Acquire(context.Background(), lockKey, time.Minute)
	require.NoError(t, err)
	defer unlock()

	e := New(fixedSnapshots{testSnapshot()}, newMemWriter(), locks, nil, Config{}, discard())
	_, err = e.Export(context.Background())
	assert.ErrorIs(t, err, domain.ErrLockHeld)
}

func TestExportReleasesLockOnFailure(t *testing.T) {
	w := newMemWriter()
	w.err = errors.New("bucket gone")
	locks := memory.NewLockManager()
	e := New(fixedSnapshots{testSnapshot()}, w, locks, nil, Config{}, discard())

	_, err := e.Export(context.Background())
	require.Error(t, err)

	unlock, err := locks.Acquire(context.Background(), lockKey, time.Minute)
	require.NoError(t, err)
	unlock()
}

type listing []domain.BlobInfo

func (l listing) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, domain.ErrNotFound
}

func (l listing) List(_ context.Context, prefix string) ([]domain.BlobInfo, error) {
	var out []domain.BlobInfo
	for _, info := range l {
		if strings.HasPrefix(info.Path, prefix) {
			out = append(out, info)
		}
	}
	return out, nil
}

func TestListSnapshotsNewestFirst(t *testing.T) {
	jan8 := time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)
	objects := listing{
		{Path: "quiverx/snapshots/2024/01/07/a.json", LastModified: jan8.Add(-24 * time.Hour)},
		{Path: "quiverx/snapshots/2024/01/08/b.json", LastModified: jan8},
		{Path: "quiverx/snapshots/2024/01/08/c.json", LastModified: jan8},
		{Path: "quiverx/snapshots/2024/01/08/notes.txt", LastModified: jan8},
		{Path: "quiverx/history/2024/01/08/b.jsonl", LastModified: jan8},
		{Path: "other/snapshots/2024/01/08/d.json", LastModified: jan8},
	}

	got, err := ListSnapshots(context.Background(), objects, "quiverx")
	require.NoError(t, err)
	paths := make([]string, len(got))
	for i, info := range got {
		paths[i] = info.Path
	}
	assert.Equal(t, []string{
		"quiverx/snapshots/2024/01/08/c.json",
		"quiverx/snapshots/2024/01/08/b.json",
		"quiverx/snapshots/2024/01/07/a.json",
	}, paths)
}
