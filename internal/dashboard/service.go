// Package dashboard turns a loaded dataset into the dashboard's views. Each
// call reloads from the source; derived figures are never cached here.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/ranking"
	"github.com/alanyoungcy/quiverx/internal/stats"
)

// Service builds views from a DataSource.
type Service struct {
	source domain.DataSource
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service over source.
func NewService(source domain.DataSource, logger *slog.Logger) *Service {
	return &Service{
		source: source,
		logger: logger.With(slog.String("component", "dashboard")),
		now:    time.Now,
	}
}

// SourceName returns the name of the configured source.
func (s *Service) SourceName() string { return s.source.Name() }

func (s *Service) load(ctx context.Context) (domain.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		// Only a lookup inside a loaded dataset is a not-found; a source that
		// cannot find its data has failed.
		return domain.Dataset{}, fmt.Errorf("dashboard: load %s: %v", s.source.Name(), err)
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dashboard: load %s: %w", s.source.Name(), err)
	}
	return ds, nil
}

// Overview returns the key metrics header.
func (s *Service) Overview(ctx context.Context) (OverviewView, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return OverviewView{}, err
	}
	return s.overview(ds), nil
}

func (s *Service) overview(ds domain.Dataset) OverviewView {
	return OverviewView{Source: s.source.Name(), KeyMetrics: ds.KeyMetrics, Tabs: Tabs}
}

// Arbitrage ranks opportunities by state.
func (s *Service) Arbitrage(ctx context.Context, state ranking.SortState) (ArbitrageView, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return ArbitrageView{}, err
	}
	return arbitrage(ds, state), nil
}

func arbitrage(ds domain.Dataset, state ranking.SortState) ArbitrageView {
	ranked := ranking.Rank(ds.Opportunities, state.Key, state.Direction)
	return ArbitrageView{
		Sort: state,
		NextSort: map[ranking.SortKey]ranking.SortState{
			ranking.SortBySpread: state.Toggle(ranking.SortBySpread),
			ranking.SortByProfit: state.Toggle(ranking.SortByProfit),
		},
		ActiveCount: len(ranked),
		TierCounts:  ranking.CountByTier(ranked),
		Rows:        ranking.Classify(ranked),
	}
}

// Opportunity returns a single classified opportunity or domain.ErrNotFound.
func (s *Service) Opportunity(ctx context.Context, id string) (ranking.Classified, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return ranking.Classified{}, err
	}
	o, err := ds.FindOpportunity(id)
	if err != nil {
		return ranking.Classified{}, fmt.Errorf("dashboard: opportunity %s: %w", id, err)
	}
	return ranking.Classify([]domain.Opportunity{o})[0], nil
}

// Liquidity returns the liquidity tab.
func (s *Service) Liquidity(ctx context.Context) (LiquidityView, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return LiquidityView{}, err
	}
	return liquidity(ds)
}

func liquidity(ds domain.Dataset) (LiquidityView, error) {
	v := LiquidityView{
		Depths:    make([]DepthRow, 0, len(ds.Depths)),
		OrderBook: ds.OrderBook,
		Scenarios: ds.Scenarios,
	}

	uplift, err := stats.LiquidityUplift(ds.Depths)
	switch {
	case err == nil:
		for i, d := range ds.Depths {
			v.Depths = append(v.Depths, DepthRow{
				MarketDepth: d,
				Tier:        ranking.DepthTier(d.Depth),
				Uplift:      uplift.Markets[i].Uplift,
				UpliftPct:   uplift.Markets[i].Percent,
			})
		}
		v.TotalCurrent = uplift.TotalCurrent
		v.TotalPotential = uplift.TotalPotential
		v.TotalUpliftPct = uplift.TotalUpliftPct
	case !errors.Is(err, domain.ErrNoData):
		return LiquidityView{}, fmt.Errorf("dashboard: liquidity: %w", err)
	}

	// The first scenario is the baseline, the last is with bridging.
	if len(ds.Scenarios) >= 2 {
		imp, err := stats.CompareScenarios(ds.Scenarios[0], ds.Scenarios[len(ds.Scenarios)-1])
		if err == nil {
			v.Improvement = &imp
		} else if !errors.Is(err, domain.ErrNoData) {
			return LiquidityView{}, fmt.Errorf("dashboard: liquidity: %w", err)
		}
	}
	return v, nil
}

// Analytics returns the missed-profit tab. An empty history fails with
// domain.ErrNoData rather than rendering zeros.
func (s *Service) Analytics(ctx context.Context) (AnalyticsView, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return AnalyticsView{}, err
	}
	return analytics(ds)
}

func analytics(ds domain.Dataset) (AnalyticsView, error) {
	summary, err := stats.Summarize(ds.History)
	if err != nil {
		return AnalyticsView{}, fmt.Errorf("dashboard: analytics: %w", err)
	}
	pairs := make([]PairRow, 0, len(ds.PairSpreads))
	for _, p := range ds.PairSpreads {
		pairs = append(pairs, PairRow{MarketPairSpread: p, Tier: ranking.PairSpreadTier(p.AvgSpread)})
	}
	return AnalyticsView{
		Summary:            summary,
		Daily:              ds.History,
		Pairs:              pairs,
		Convergence:        ds.Convergence,
		ProfitDistribution: ds.ProfitDistribution,
	}, nil
}

// Architecture returns the static routing description.
func (s *Service) Architecture(ctx context.Context) (ArchitectureView, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return ArchitectureView{}, err
	}
	return architecture(ds), nil
}

func architecture(ds domain.Dataset) ArchitectureView {
	links := make([]LinkRow, 0, len(ds.Links))
	for _, l := range ds.Links {
		links = append(links, LinkRow{NetworkLink: l, Critical: ranking.LinkCritical(l.Strength)})
	}
	return ArchitectureView{Steps: ds.Steps, Auction: ds.Auction, Links: links}
}

// Snapshot computes every view from one load.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	liq, err := liquidity(ds)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		ID:           uuid.NewString(),
		GeneratedAt:  s.now().UTC(),
		Overview:     s.overview(ds),
		Arbitrage:    arbitrage(ds, ranking.DefaultSortState()),
		Liquidity:    liq,
		Architecture: architecture(ds),
	}
	a, err := analytics(ds)
	switch {
	case err == nil:
		snap.Analytics = &a
	case errors.Is(err, domain.ErrNoData):
		s.logger.DebugContext(ctx, "snapshot without analytics", slog.String("reason", err.Error()))
	default:
		return Snapshot{}, err
	}
	return snap, nil
}
