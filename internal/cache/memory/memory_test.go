package memory

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

func TestBusPatternDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := NewBus()

	all, err := bus.Subscribe(ctx, "ch:*")
	require.NoError(t, err)
	status, err := bus.Subscribe(ctx, "ch:status")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "ch:dashboard", []byte("refresh")))

	select {
	case msg := <-all:
		assert.Equal(t, "refresh", string(msg))
	case <-time.After(time.Second):
		t.Fatal("pattern subscriber did not receive message")
	}
	select {
	case msg := <-status:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

func TestBusClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := NewBus().Subscribe(ctx, "ch:dashboard")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter()
	ctx := context.Background()
	for i := range 3 {
		ok, err := rl.Allow(ctx, "1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, err := rl.Allow(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = rl.Allow(ctx, "5.6.7.8", 3, time.Minute)
	assert.True(t, ok)
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter()
	clock := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := range 50 {
		_, err := rl.Allow(ctx, fmt.Sprintf("client-%d", i), 2, time.Minute)
		require.NoError(t, err)
	}
	ok, _ := rl.Allow(ctx, "busy", 1, time.Hour)
	assert.True(t, ok)
	assert.Equal(t, 51, rl.Len())

	clock = clock.Add(2 * time.Minute)
	ok, _ = rl.Allow(ctx, "late", 2, time.Minute)
	assert.True(t, ok)
	assert.Equal(t, 2, rl.Len(), "only the hour-window bucket and the new one remain")

	ok, _ = rl.Allow(ctx, "busy", 1, time.Hour)
	assert.False(t, ok, "a bucket still inside its window keeps its state")
}

func TestBusStreamReplay(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, bus.StreamAppend(ctx, "stream:dashboard", []byte(p)))
	}

	all, err := bus.StreamRead(ctx, "stream:dashboard", "0", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1-0", all[0].ID)
	assert.Equal(t, []byte("c"), all[2].Payload)

	page, err := bus.StreamRead(ctx, "stream:dashboard", all[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, []byte("b"), page[0].Payload)

	none, err := bus.StreamRead(ctx, "stream:other", "0", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = bus.StreamRead(ctx, "stream:dashboard", "latest", 1)
	assert.Error(t, err)
}

func TestBusStreamTrims(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()
	for i := range streamMaxLen + 5 {
		require.NoError(t, bus.StreamAppend(ctx, "s", []byte(strconv.Itoa(i))))
	}
	msgs, err := bus.StreamRead(ctx, "s", "0", 0)
	require.NoError(t, err)
	require.Len(t, msgs, streamMaxLen)
	assert.Equal(t, "6-0", msgs[0].ID)
}

func TestLockManager(t *testing.T) {
	lm := NewLockManager()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lm.clock = func() time.Time { return now }
	ctx := context.Background()

	unlock, err := lm.Acquire(ctx, "export", time.Minute)
	require.NoError(t, err)

	_, err = lm.Acquire(ctx, "export", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	unlock()
	unlock()
	unlock2, err := lm.Acquire(ctx, "export", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = lm.Acquire(ctx, "export", time.Minute)
	require.NoError(t, err, "expired lock is reclaimed")

	unlock2()
	_, err = lm.Acquire(ctx, "export", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld, "stale unlock must not release the new holder")
}

func TestSnapshotCacheExpiry(t *testing.T) {
	c := NewSnapshotCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.clock = func() time.Time { return now }
	ctx := context.Background()

	ds := domain.Dataset{KeyMetrics: domain.KeyMetrics{ActiveMarkets: 23}}
	require.NoError(t, c.Set(ctx, "static", ds, time.Minute))

	got, err := c.Get(ctx, "static")
	require.NoError(t, err)
	assert.Equal(t, 23, got.KeyMetrics.ActiveMarkets)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "static")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, c.Set(ctx, "static", ds, 0))
	require.NoError(t, c.Invalidate(ctx, "static"))
	_, err = c.Get(ctx, "static")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
