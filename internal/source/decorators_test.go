package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type flakySource struct {
	calls int
	err   error
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Load(context.Context) (domain.Dataset, error) {
	f.calls++
	if f.err != nil {
		return domain.Dataset{}, f.err
	}
	return Sample(), nil
}

func TestGuardedTripsAfterConsecutiveFailures(t *testing.T) {
	inner := &flakySource{err: errors.New("connection refused")}
	g := NewGuarded(inner, BreakerConfig{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFails: 3}, discardLogger())

	for range 3 {
		_, err := g.Load(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.Load(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls)
}

func TestGuardedPassesThrough(t *testing.T) {
	g := NewGuarded(&flakySource{}, DefaultBreakerConfig(), discardLogger())
	ds, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Opportunities, 5)
	assert.Equal(t, "flaky", g.Name())
}

type memCache struct {
	mu     sync.Mutex
	items  map[string]domain.Dataset
	getErr error
}

func (m *memCache) Set(_ context.Context, key string, ds domain.Dataset, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = ds
	return nil
}

func (m *memCache) Get(_ context.Context, key string) (domain.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Dataset{}, m.getErr
	}
	ds, ok := m.items[key]
	if !ok {
		return domain.Dataset{}, domain.ErrNotFound
	}
	return ds, nil
}

func (m *memCache) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func TestCachedReadThrough(t *testing.T) {
	inner := &flakySource{}
	cache := &memCache{items: map[string]domain.Dataset{}}
	c := NewCached(inner, cache, time.Minute, discardLogger())

	_, err := c.Load(context.Background())
	require.NoError(t, err)
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	require.NoError(t, c.Invalidate(context.Background()))
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedBypassesBrokenCache(t *testing.T) {
	inner := &flakySource{}
	cache := &memCache{items: map[string]domain.Dataset{}, getErr: errors.New("redis down")}
	c := NewCached(inner, cache, time.Minute, discardLogger())

	ds, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Opportunities, 5)
}

type recordingObserver struct {
	source string
	err    error
}

func (r *recordingObserver) ObserveLoad(source string, _ time.Duration, err error) {
	r.source, r.err = source, err
}

func TestObserved(t *testing.T) {
	obs := &recordingObserver{}
	boom := errors.New("boom")
	_, err := NewObserved(&flakySource{err: boom}, obs).Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "flaky", obs.source)
	assert.ErrorIs(t, obs.err, boom)
}
