package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/server/handler"
	"github.com/alanyoungcy/quiverx/internal/server/middleware"
	"github.com/alanyoungcy/quiverx/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigins []string
	APIKey      string // empty disables authentication

	RateLimit       int // requests per window per client IP, 0 disables
	RateLimitWindow time.Duration
	// TrustedProxies are the peers whose X-Forwarded-For is believed.
	TrustedProxies []netip.Prefix

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Handlers aggregates the HTTP handlers registered by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Status    *handler.StatusHandler
	Dashboard *handler.DashboardHandler
	Export    *handler.ExportHandler
	Refreshes *handler.RefreshHistoryHandler
	Metrics   http.Handler
}

// Deps are optional cross-cutting collaborators.
type Deps struct {
	Limiter  domain.RateLimiter
	Observer middleware.RequestObserver
	Hub      *ws.Hub
}

// Server is the dashboard HTTP + WebSocket API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers every route and wraps the mux in the middleware chain.
func NewServer(cfg Config, handlers Handlers, deps Deps, logger *slog.Logger) *Server {
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:           NewHandler(cfg, handlers, deps, logger),
		ReadTimeout:       orDefault(cfg.ReadTimeout, 15*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      orDefault(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:       orDefault(cfg.IdleTimeout, 60*time.Second),
	}
	return &Server{httpServer: srv, logger: logger}
}

// NewHandler builds the routed, middleware-wrapped handler. It is exported
// so tests can drive it with httptest.
func NewHandler(cfg Config, handlers Handlers, deps Deps, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Unauthenticated endpoints.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	if handlers.Metrics != nil {
		mux.Handle("GET /metrics", handlers.Metrics)
	}

	if handlers.Status != nil {
		mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	}

	d := handlers.Dashboard
	mux.HandleFunc("GET /api/overview", d.Overview)
	mux.HandleFunc("GET /api/arbitrage", d.Arbitrage)
	mux.HandleFunc("GET /api/arbitrage/{id}", d.Opportunity)
	mux.HandleFunc("GET /api/liquidity", d.Liquidity)
	mux.HandleFunc("GET /api/analytics", d.Analytics)
	mux.HandleFunc("GET /api/architecture", d.Architecture)
	mux.HandleFunc("GET /api/snapshot", d.Snapshot)

	if handlers.Export != nil {
		mux.HandleFunc("POST /api/snapshots", handlers.Export.Create)
	}
	if handlers.Refreshes != nil {
		mux.HandleFunc("GET /api/refreshes", handlers.Refreshes.List)
	}

	if deps.Hub != nil {
		mux.HandleFunc("GET /ws", deps.Hub.HandleWS)
	}

	// Innermost first. Metrics must sit inside Logging so it observes the
	// request value the mux annotates with its pattern.
	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey, "/api/health", "/metrics")(h)
	if deps.Limiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(deps.Limiter, cfg.RateLimit, orDefault(cfg.RateLimitWindow, time.Minute), cfg.TrustedProxies, logger)(h)
	}
	h = middleware.CORS(cfg.CORSOrigins)(h)
	if deps.Observer != nil {
		h = middleware.Metrics(deps.Observer)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.Recover(logger)(h)
	return h
}

// Start listens until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight requests within the ctx deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
