package source

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// Cached is a read-through cache in front of a slow source. Cache failures
// are logged and bypassed; only the inner source can fail a Load.
type Cached struct {
	inner  domain.DataSource
	cache  domain.SnapshotCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps inner with cache.
func NewCached(inner domain.DataSource, cache domain.SnapshotCache, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{inner: inner, cache: cache, ttl: ttl, logger: logger.With(slog.String("component", "source_cache"))}
}

// Name implements domain.DataSource.
func (c *Cached) Name() string { return c.inner.Name() }

// Load implements domain.DataSource.
func (c *Cached) Load(ctx context.Context) (domain.Dataset, error) {
	key := c.inner.Name()
	ds, err := c.cache.Get(ctx, key)
	if err == nil {
		return ds, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		c.logger.Warn("snapshot cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	ds, err = c.inner.Load(ctx)
	if err != nil {
		return domain.Dataset{}, err
	}
	if err := c.cache.Set(ctx, key, ds, c.ttl); err != nil {
		c.logger.Warn("snapshot cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return ds, nil
}

// Invalidate drops the cached copy so the next Load hits the inner source.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.cache.Invalidate(ctx, c.inner.Name())
}

// LoadObserver is notified after every load attempt.
type LoadObserver interface {
	ObserveLoad(source string, elapsed time.Duration, err error)
}

// Observed reports each Load to an observer, typically a metrics collector.
type Observed struct {
	inner    domain.DataSource
	observer LoadObserver
}

// NewObserved wraps inner.
func NewObserved(inner domain.DataSource, observer LoadObserver) *Observed {
	return &Observed{inner: inner, observer: observer}
}

// Name implements domain.DataSource.
func (o *Observed) Name() string { return o.inner.Name() }

// Load implements domain.DataSource.
func (o *Observed) Load(ctx context.Context) (domain.Dataset, error) {
	start := time.Now()
	ds, err := o.inner.Load(ctx)
	o.observer.ObserveLoad(o.inner.Name(), time.Since(start), err)
	return ds, err
}
