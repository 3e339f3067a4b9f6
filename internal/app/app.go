// Package app wires the dashboard's dependencies and runs its long-lived
// processes: the HTTP/WebSocket API, the snapshot refresher and scheduled
// exports.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/export"
	"github.com/alanyoungcy/quiverx/internal/render"
	"github.com/alanyoungcy/quiverx/internal/server"
	"github.com/alanyoungcy/quiverx/internal/server/handler"
	"github.com/alanyoungcy/quiverx/internal/server/middleware"
	"github.com/alanyoungcy/quiverx/internal/server/ws"
	"github.com/alanyoungcy/quiverx/internal/source"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// App owns the configuration, the wired dependencies and their cleanup.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	deps      *Dependencies
	closers   []func()
	startedAt time.Time
}

// New wires dependencies for cfg. Close must be called when done.
func New(ctx context.Context, cfg *config.Config, req Requirements, logger *slog.Logger) (*App, error) {
	deps, cleanup, err := Wire(ctx, cfg, req, logger)
	if err != nil {
		return nil, fmt.Errorf("app: wire dependencies: %w", err)
	}
	return &App{
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "app")),
		deps:      deps,
		closers:   []func(){cleanup},
		startedAt: time.Now().UTC(),
	}, nil
}

// Dependencies exposes the wired dependencies to commands.
func (a *App) Dependencies() *Dependencies { return a.deps }

// Service returns a dashboard service over the configured source.
func (a *App) Service() *dashboard.Service {
	return dashboard.NewService(a.deps.Source, a.logger)
}

// Exporter returns the snapshot exporter, or nil when object storage is not
// wired.
func (a *App) Exporter() *export.Exporter {
	if a.deps.BlobWriter == nil {
		return nil
	}
	return export.New(a.Service(), a.deps.BlobWriter, a.deps.LockManager, a.deps.Notifier,
		export.Config{Prefix: a.cfg.Export.Prefix, LockTTL: a.cfg.Export.LockTTL.Duration}, a.logger)
}

// Snapshots lists exported snapshot documents, newest first.
func (a *App) Snapshots(ctx context.Context) ([]domain.BlobInfo, error) {
	if a.deps.BlobReader == nil {
		return nil, errors.New("app: snapshots: object storage is not wired")
	}
	return export.ListSnapshots(ctx, a.deps.BlobReader, a.cfg.Export.Prefix)
}

// Serve runs the API server, WebSocket hub, refresher and export schedule
// until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting dashboard",
		slog.String("source", a.deps.Source.Name()),
		slog.String("version", Version),
	)

	proxies, err := middleware.ParseTrustedProxies(a.cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}

	svc := a.Service()
	refresher := dashboard.NewRefresher(svc, a.deps.SignalBus, a.cfg.Refresh.Interval.Duration, a.logger,
		dashboard.WithNotifier(a.deps.Notifier),
		dashboard.WithObserver(a.deps.Metrics),
		dashboard.WithMoneyFormat(render.USD),
	)

	var exporter *export.Exporter
	if a.cfg.Export.Enabled {
		exporter = a.Exporter()
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Refresh.Enabled {
		g.Go(func() error { return refresher.Run(ctx) })
	}
	if exporter != nil && a.cfg.Export.Interval.Duration > 0 {
		g.Go(func() error { return a.runExports(ctx, exporter, a.cfg.Export.Interval.Duration) })
	}
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, svc, refresher, exporter, proxies)
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// startHTTPServer adds the hub, the server and its graceful shutdown to g.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, svc *dashboard.Service, refresher *dashboard.Refresher, exporter *export.Exporter, proxies []netip.Prefix) {
	hub := ws.NewHub(a.deps.SignalBus, a.logger, ws.Config{
		Source:    a.deps.Source.Name(),
		StartedAt: a.startedAt,
		Status:    func() any { return refresher.Status() },
		Observer:  a.deps.Metrics,
	})
	g.Go(func() error { return hub.Run(ctx) })

	status := &handler.StatusHandler{
		Source:    a.deps.Source.Name(),
		Version:   Version,
		StartedAt: a.startedAt,
		Refresh:   refresher,
	}
	if a.deps.Breaker != nil {
		status.Breaker = a.deps.Breaker
	}

	var exp handler.Exporter
	if exporter != nil {
		exp = exporter
	}

	sc := a.cfg.Server
	srv := server.NewServer(server.Config{
		Host:            sc.Host,
		Port:            sc.Port,
		CORSOrigins:     sc.CORSOrigins,
		APIKey:          sc.APIKey,
		RateLimit:       sc.RateLimit,
		RateLimitWindow: sc.RateLimitWindow.Duration,
		TrustedProxies:  proxies,
	}, server.Handlers{
		Health:    handler.NewHealthHandler(a.deps.Health, a.logger),
		Status:    status,
		Dashboard: handler.NewDashboardHandler(svc, a.logger),
		Export:    handler.NewExportHandler(exp, a.logger),
		Refreshes: handler.NewRefreshHistoryHandler(a.deps.Events, a.logger),
		Metrics:   a.deps.Metrics.Handler(),
	}, server.Deps{
		Limiter:  a.deps.RateLimiter,
		Observer: a.deps.Metrics,
		Hub:      hub,
	}, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// runExports exports on every tick. A held lock means another replica is
// exporting and is not an error.
func (a *App) runExports(ctx context.Context, exporter *export.Exporter, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, err := exporter.Export(ctx)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrLockHeld):
				a.logger.DebugContext(ctx, "scheduled export skipped, lock held")
			case ctx.Err() == nil:
				a.logger.ErrorContext(ctx, "scheduled export failed", slog.String("error", err.Error()))
			}
		}
	}
}

// SeedResult reports what Seed wrote.
type SeedResult struct {
	Source        string
	Opportunities int
	Days          int
}

// Seed copies the dataset from `from` into Postgres and drops any cached
// snapshot.
func (a *App) Seed(ctx context.Context, from domain.DataSource) (SeedResult, error) {
	if a.deps.Store == nil {
		return SeedResult{}, errors.New("app: seed: postgres is not wired")
	}
	ds, err := from.Load(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("app: seed: load %s: %w", from.Name(), err)
	}
	if err := source.ValidateDataset(ds); err != nil {
		return SeedResult{}, fmt.Errorf("app: seed: %w", err)
	}
	if err := a.deps.Store.Replace(ctx, ds); err != nil {
		return SeedResult{}, fmt.Errorf("app: seed: %w", err)
	}
	if a.deps.Cache != nil {
		if err := a.deps.Cache.Invalidate(ctx); err != nil {
			a.logger.WarnContext(ctx, "seed: cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	a.logger.InfoContext(ctx, "dataset seeded",
		slog.String("from", from.Name()),
		slog.Int("opportunities", len(ds.Opportunities)),
		slog.Int("days", len(ds.History)),
	)
	return SeedResult{Source: from.Name(), Opportunities: len(ds.Opportunities), Days: len(ds.History)}, nil
}

// Close tears down resources in reverse order. Safe to call twice.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
