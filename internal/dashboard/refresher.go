package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/notify"
	"github.com/alanyoungcy/quiverx/internal/ranking"
)

// Channels published on the signal bus.
const (
	ChannelDashboard = "ch:dashboard"
	ChannelStatus    = "ch:status"
	StreamRefresh    = "stream:dashboard"
)

// Notifier is the subset of notify.Notifier the refresher uses.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// RefreshObserver receives per-cycle metrics.
type RefreshObserver interface {
	ObserveRefresh(err error)
	SetTierCounts(counts map[string]int)
}

// RefreshEvent is the payload published after every successful refresh.
type RefreshEvent struct {
	Type          string         `json:"type"`
	SnapshotID    string         `json:"snapshot_id"`
	Source        string         `json:"source"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Opportunities int            `json:"opportunities"`
	TierCounts    map[string]int `json:"tier_counts"`
	NewHighProfit []string       `json:"new_high_profit,omitempty"`
}

// StatusEvent is published on ChannelStatus after every refresh attempt.
type StatusEvent struct {
	Type    string `json:"type"`
	Payload Status `json:"payload"`
}

// Status summarises the refresher for /api/status.
type Status struct {
	LastRefresh time.Time `json:"last_refresh"`
	LastError   string    `json:"last_error,omitempty"`
	Refreshes   int64     `json:"refreshes"`
	Failures    int64     `json:"failures"`
}

// Refresher periodically rebuilds the snapshot and announces it.
type Refresher struct {
	svc      *Service
	bus      domain.SignalBus
	notifier Notifier
	observer RefreshObserver
	interval time.Duration
	logger   *slog.Logger

	mu        sync.RWMutex
	latest    *Snapshot
	status    Status
	seenHigh  map[string]bool
	formatUSD func(float64) string
}

// RefresherOption customises a Refresher.
type RefresherOption func(*Refresher)

// WithNotifier sends alerts for newly high-profit opportunities.
func WithNotifier(n Notifier) RefresherOption { return func(r *Refresher) { r.notifier = n } }

// WithObserver records refresh metrics.
func WithObserver(o RefreshObserver) RefresherOption { return func(r *Refresher) { r.observer = o } }

// WithMoneyFormat sets how dollar amounts appear in alerts.
func WithMoneyFormat(f func(float64) string) RefresherOption {
	return func(r *Refresher) { r.formatUSD = f }
}

// NewRefresher creates a Refresher. bus may be nil.
func NewRefresher(svc *Service, bus domain.SignalBus, interval time.Duration, logger *slog.Logger, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		svc:       svc,
		bus:       bus,
		interval:  interval,
		logger:    logger.With(slog.String("component", "refresher")),
		seenHigh:  make(map[string]bool),
		formatUSD: func(v float64) string { return fmt.Sprintf("$%.0f", v) },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run refreshes immediately and then every interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "refresher started", slog.Duration("interval", r.interval))
	r.refreshLogged(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.refreshLogged(ctx)
		}
	}
}

func (r *Refresher) refreshLogged(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
		r.logger.ErrorContext(ctx, "refresh failed", slog.String("error", err.Error()))
	}
}

// Refresh performs one cycle and returns the new snapshot.
func (r *Refresher) Refresh(ctx context.Context) (Snapshot, error) {
	snap, err := r.svc.Snapshot(ctx)
	if r.observer != nil {
		r.observer.ObserveRefresh(err)
	}
	if err != nil {
		r.mu.Lock()
		r.status.Failures++
		r.status.LastError = err.Error()
		r.mu.Unlock()
		r.publishStatus(ctx)
		r.alert(ctx, notify.EventRefreshFailed, "Dashboard refresh failed", err.Error())
		return Snapshot{}, err
	}

	counts := make(map[string]int, len(snap.Arbitrage.TierCounts))
	for tier, n := range snap.Arbitrage.TierCounts {
		counts[string(tier)] = n
	}
	if r.observer != nil {
		r.observer.SetTierCounts(counts)
	}

	fresh := r.recordHigh(snap.Arbitrage.Rows)

	r.mu.Lock()
	r.latest = &snap
	r.status.LastRefresh = snap.GeneratedAt
	r.status.LastError = ""
	r.status.Refreshes++
	r.mu.Unlock()

	ev := RefreshEvent{
		Type:          "dashboard_refresh",
		SnapshotID:    snap.ID,
		Source:        snap.Overview.Source,
		GeneratedAt:   snap.GeneratedAt,
		Opportunities: snap.Arbitrage.ActiveCount,
		TierCounts:    counts,
	}
	for _, row := range fresh {
		ev.NewHighProfit = append(ev.NewHighProfit, row.ID)
	}
	r.publish(ctx, ev)
	r.publishStatus(ctx)

	if len(fresh) > 0 {
		lines := make([]string, 0, len(fresh))
		for _, row := range fresh {
			lines = append(lines, fmt.Sprintf("%s: spread %.1f%%, profit %s (%s)",
				row.Event, row.Spread, r.formatUSD(row.ProfitPotential), row.TimeToExpiry))
		}
		r.alert(ctx, notify.EventHighProfit,
			fmt.Sprintf("%d new high-profit opportunit%s", len(fresh), plural(len(fresh))),
			strings.Join(lines, "\n"))
	}
	return snap, nil
}

// recordHigh returns high-profit rows not seen in earlier refreshes. Rows
// that drop out of the high tier can alert again if they return.
func (r *Refresher) recordHigh(rows []ranking.Classified) []ranking.Classified {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := make(map[string]bool)
	var fresh []ranking.Classified
	for _, row := range rows {
		if row.ProfitTier != ranking.TierHigh {
			continue
		}
		current[row.ID] = true
		if !r.seenHigh[row.ID] {
			fresh = append(fresh, row)
		}
	}
	r.seenHigh = current
	return fresh
}

func (r *Refresher) publish(ctx context.Context, ev RefreshEvent) {
	if r.bus == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.ErrorContext(ctx, "marshal refresh event", slog.String("error", err.Error()))
		return
	}
	if err := r.bus.Publish(ctx, ChannelDashboard, payload); err != nil {
		r.logger.WarnContext(ctx, "publish refresh event", slog.String("error", err.Error()))
	}
	if es, ok := r.bus.(domain.EventStream); ok {
		if err := es.StreamAppend(ctx, StreamRefresh, payload); err != nil {
			r.logger.WarnContext(ctx, "append refresh stream", slog.String("error", err.Error()))
		}
	}
}

// publishStatus announces the current counters on ChannelStatus.
func (r *Refresher) publishStatus(ctx context.Context) {
	if r.bus == nil {
		return
	}
	payload, err := json.Marshal(StatusEvent{Type: "refresh_status", Payload: r.Status()})
	if err != nil {
		r.logger.ErrorContext(ctx, "marshal status event", slog.String("error", err.Error()))
		return
	}
	if err := r.bus.Publish(ctx, ChannelStatus, payload); err != nil {
		r.logger.WarnContext(ctx, "publish status event", slog.String("error", err.Error()))
	}
}

func (r *Refresher) alert(ctx context.Context, event, title, msg string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, event, title, msg); err != nil {
		r.logger.WarnContext(ctx, "notification failed", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Latest returns the most recent snapshot, if any.
func (r *Refresher) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return Snapshot{}, false
	}
	return *r.latest, true
}

// Status returns the refresher counters.
func (r *Refresher) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
