package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/cache/memory"
	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/source"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), &cfg, Requirements{}, discard())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestWireDefaultsUsesInProcessBackends(t *testing.T) {
	a := newApp(t, config.Defaults())
	deps := a.Dependencies()

	assert.Equal(t, "static", deps.Source.Name())
	assert.Nil(t, deps.Breaker)
	assert.Nil(t, deps.Cache)
	assert.Nil(t, deps.Store)
	assert.IsType(t, &memory.Bus{}, deps.SignalBus)
	assert.Contains(t, deps.Health, "source")
	assert.NotContains(t, deps.Health, "redis")
	assert.Nil(t, a.Exporter())
}

func TestWireFileSource(t *testing.T) {
	raw, err := source.Encode(source.Sample())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg := config.Defaults()
	cfg.Source.Kind = config.SourceFile
	cfg.Source.Path = path
	a := newApp(t, cfg)

	v, err := a.Service().Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "file", v.Source)
	assert.Equal(t, 47, v.KeyMetrics.TotalOpportunities)
}

func TestServePublishesRefreshes(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Enabled = false
	cfg.Refresh.Interval.Duration = 20 * time.Millisecond
	a := newApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := a.Dependencies().SignalBus.Subscribe(ctx, dashboard.ChannelDashboard)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	select {
	case raw := <-msgs:
		var ev dashboard.RefreshEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "dashboard_refresh", ev.Type)
		assert.Equal(t, 5, ev.Opportunities)
	case <-time.After(3 * time.Second):
		t.Fatal("no refresh published")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestSeedRequiresPostgres(t *testing.T) {
	a := newApp(t, config.Defaults())
	_, err := a.Seed(context.Background(), source.NewSample())
	assert.ErrorContains(t, err, "postgres is not wired")
}
