package dashboard

import (
	"time"

	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/ranking"
	"github.com/alanyoungcy/quiverx/internal/stats"
)

// Tab identifies one section of the dashboard.
type Tab struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Tabs lists the dashboard sections in display order.
var Tabs = []Tab{
	{ID: "arbitrage", Title: "Live Arbitrage"},
	{ID: "liquidity", Title: "Liquidity Analysis"},
	{ID: "analytics", Title: "Missed Profit Analytics"},
	{ID: "architecture", Title: "Technical Architecture"},
}

// OverviewView is the header shown above every tab.
type OverviewView struct {
	Source     string            `json:"source"`
	KeyMetrics domain.KeyMetrics `json:"key_metrics"`
	Tabs       []Tab             `json:"tabs"`
}

// ArbitrageView is the ranked opportunity table.
type ArbitrageView struct {
	Sort        ranking.SortState                     `json:"sort"`
	NextSort    map[ranking.SortKey]ranking.SortState `json:"next_sort"`
	ActiveCount int                                   `json:"active_count"`
	TierCounts  map[ranking.Tier]int                  `json:"tier_counts"`
	Rows        []ranking.Classified                  `json:"rows"`
}

// DepthRow is one venue in the liquidity table.
type DepthRow struct {
	domain.MarketDepth
	Tier      ranking.Tier `json:"tier"`
	Uplift    float64      `json:"uplift"`
	UpliftPct float64      `json:"uplift_pct"`
}

// LiquidityView is the liquidity tab.
type LiquidityView struct {
	Depths         []DepthRow                 `json:"depths"`
	TotalCurrent   float64                    `json:"total_current"`
	TotalPotential float64                    `json:"total_potential"`
	TotalUpliftPct float64                    `json:"total_uplift_pct"`
	OrderBook      []domain.BookLevel         `json:"order_book"`
	Scenarios      []domain.BridgingScenario  `json:"scenarios"`
	Improvement    *stats.BridgingImprovement `json:"improvement,omitempty"`
}

// PairRow is one market pair with its highlight tier.
type PairRow struct {
	domain.MarketPairSpread
	Tier ranking.Tier `json:"tier"`
}

// AnalyticsView is the missed-profit tab.
type AnalyticsView struct {
	Summary            stats.AnalyticsSummary     `json:"summary"`
	Daily              []domain.DailyRecord       `json:"daily"`
	Pairs              []PairRow                  `json:"pairs"`
	Convergence        []domain.ConvergenceBucket `json:"convergence"`
	ProfitDistribution []domain.ProfitShare       `json:"profit_distribution"`
}

// LinkRow is a network link with its criticality.
type LinkRow struct {
	domain.NetworkLink
	Critical bool `json:"critical"`
}

// ArchitectureView describes the intent routing design.
type ArchitectureView struct {
	Steps   []domain.ArchitectureStep `json:"steps"`
	Auction []domain.AuctionPoint     `json:"auction"`
	Links   []LinkRow                 `json:"links"`
}

// Snapshot bundles every view computed from a single load. Analytics is nil
// when the source has no history.
type Snapshot struct {
	ID           string           `json:"id"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Overview     OverviewView     `json:"overview"`
	Arbitrage    ArbitrageView    `json:"arbitrage"`
	Liquidity    LiquidityView    `json:"liquidity"`
	Analytics    *AnalyticsView   `json:"analytics,omitempty"`
	Architecture ArchitectureView `json:"architecture"`
}
