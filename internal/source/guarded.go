package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// BreakerConfig tunes the circuit breaker wrapped around a remote source.
type BreakerConfig struct {
	MaxRequests      uint32        // trial requests allowed while half-open
	Interval         time.Duration // closed-state count reset period
	Timeout          time.Duration // open-state duration before probing
	ConsecutiveFails uint32
}

// DefaultBreakerConfig trips after three consecutive failures and retries
// again after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: 30 * time.Second, ConsecutiveFails: 3}
}

// Guarded short-circuits loads from a failing source so a dead database or
// bucket does not stall every request.
type Guarded struct {
	inner  domain.DataSource
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewGuarded wraps inner with a circuit breaker.
func NewGuarded(inner domain.DataSource, cfg BreakerConfig, logger *slog.Logger) *Guarded {
	g := &Guarded{inner: inner, logger: logger.With(slog.String("component", "source_breaker"))}
	trip := cfg.ConsecutiveFails
	if trip == 0 {
		trip = 3
	}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("source breaker state change",
				slog.String("source", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return g
}

// Name implements domain.DataSource.
func (g *Guarded) Name() string { return g.inner.Name() }

// State reports the breaker state ("closed", "half-open" or "open").
func (g *Guarded) State() string { return g.cb.State().String() }

// Load implements domain.DataSource.
func (g *Guarded) Load(ctx context.Context) (domain.Dataset, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.Load(ctx)
	})
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("source: %s: %w", g.inner.Name(), err)
	}
	return res.(domain.Dataset), nil
}
