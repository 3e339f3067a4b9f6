package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/cache/memory"
	"github.com/alanyoungcy/quiverx/internal/notify"
	"github.com/alanyoungcy/quiverx/internal/source"
)

type recordedAlert struct{ event, title, msg string }

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []recordedAlert
}

func (f *fakeNotifier) Notify(_ context.Context, event, title, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, recordedAlert{event, title, msg})
	return nil
}

type fakeObserver struct {
	results []error
	counts  map[string]int
}

func (f *fakeObserver) ObserveRefresh(err error)            { f.results = append(f.results, err) }
func (f *fakeObserver) SetTierCounts(counts map[string]int) { f.counts = counts }

func TestRefreshPublishesAndAlertsOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := memory.NewBus()
	events, err := bus.Subscribe(ctx, ChannelDashboard)
	require.NoError(t, err)

	svc, src := newService(source.Sample())
	n := &fakeNotifier{}
	obs := &fakeObserver{}
	r := NewRefresher(svc, bus, time.Minute, discard(), WithNotifier(n), WithObserver(obs))

	snap, err := r.Refresh(ctx)
	require.NoError(t, err)

	select {
	case raw := <-events:
		var ev RefreshEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "dashboard_refresh", ev.Type)
		assert.Equal(t, snap.ID, ev.SnapshotID)
		assert.Equal(t, []string{"1"}, ev.NewHighProfit)
		assert.Equal(t, 3, ev.TierCounts["medium"])
	case <-time.After(time.Second):
		t.Fatal("no refresh event published")
	}

	require.Len(t, n.alerts, 1)
	assert.Equal(t, notify.EventHighProfit, n.alerts[0].event)
	assert.Contains(t, n.alerts[0].msg, "BTC > $100k by Dec 2024")
	assert.Equal(t, "1 new high-profit opportunity", n.alerts[0].title)

	_, err = r.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, n.alerts, 1, "already-seen opportunity must not alert again")

	src.ds.Opportunities[1].ProfitPotential = 2500
	_, err = r.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, n.alerts, 2)
	assert.Contains(t, n.alerts[1].msg, "ETH > $5k by Q1 2025")

	assert.Equal(t, map[string]int{"high": 2, "medium": 2, "low": 1}, obs.counts)
	assert.Equal(t, int64(3), r.Status().Refreshes)
	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, 5, latest.Arbitrage.ActiveCount)
}

func TestRefreshFailure(t *testing.T) {
	svc := NewService(&stubSource{err: errors.New("timeout")}, discard())
	n := &fakeNotifier{}
	obs := &fakeObserver{}
	r := NewRefresher(svc, nil, time.Minute, discard(), WithNotifier(n), WithObserver(obs))

	_, err := r.Refresh(context.Background())
	require.Error(t, err)

	st := r.Status()
	assert.Equal(t, int64(1), st.Failures)
	assert.Contains(t, st.LastError, "timeout")
	require.Len(t, n.alerts, 1)
	assert.Equal(t, notify.EventRefreshFailed, n.alerts[0].event)
	require.Len(t, obs.results, 1)
	assert.Error(t, obs.results[0])

	_, ok := r.Latest()
	assert.False(t, ok)
}

func TestRefreshPublishesStatusEveryCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := memory.NewBus()
	statuses, err := bus.Subscribe(ctx, ChannelStatus)
	require.NoError(t, err)

	src := &stubSource{ds: source.Sample()}
	r := NewRefresher(NewService(src, discard()), bus, time.Minute, discard())

	next := func() StatusEvent {
		t.Helper()
		select {
		case raw := <-statuses:
			var ev StatusEvent
			require.NoError(t, json.Unmarshal(raw, &ev))
			return ev
		case <-time.After(time.Second):
			t.Fatal("no status event published")
			return StatusEvent{}
		}
	}

	_, err = r.Refresh(ctx)
	require.NoError(t, err)
	ev := next()
	assert.Equal(t, "refresh_status", ev.Type)
	assert.Equal(t, int64(1), ev.Payload.Refreshes)
	assert.Empty(t, ev.Payload.LastError)

	src.err = errors.New("timeout")
	_, err = r.Refresh(ctx)
	require.Error(t, err)
	ev = next()
	assert.Equal(t, int64(1), ev.Payload.Failures)
	assert.Contains(t, ev.Payload.LastError, "timeout")
}

func TestRefreshAppendsToEventStream(t *testing.T) {
	bus := memory.NewBus()
	svc, _ := newService(source.Sample())
	r := NewRefresher(svc, bus, time.Minute, discard())

	first, err := r.Refresh(context.Background())
	require.NoError(t, err)
	second, err := r.Refresh(context.Background())
	require.NoError(t, err)

	msgs, err := bus.StreamRead(context.Background(), StreamRefresh, "0", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	var ev RefreshEvent
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &ev))
	assert.Equal(t, first.ID, ev.SnapshotID)
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &ev))
	assert.Equal(t, second.ID, ev.SnapshotID)
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, _ := newService(source.Sample())
	r := NewRefresher(svc, nil, 10*time.Millisecond, discard())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, r.Status().Refreshes, int64(1))
}
