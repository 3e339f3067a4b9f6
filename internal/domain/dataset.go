package domain

import "context"

// KeyMetrics are the headline figures shown above every dashboard tab.
type KeyMetrics struct {
	TotalOpportunities int     `json:"total_opportunities" yaml:"total_opportunities"`
	AvgSpread          float64 `json:"avg_spread" yaml:"avg_spread"`
	MissedProfit24h    float64 `json:"missed_profit_24h" yaml:"missed_profit_24h"`
	ActiveMarkets      int     `json:"active_markets" yaml:"active_markets"`
}

// Dataset is everything the dashboard renders. A DataSource produces one
// Dataset per Load; consumers must treat it as immutable.
type Dataset struct {
	KeyMetrics         KeyMetrics          `json:"key_metrics" yaml:"key_metrics"`
	Opportunities      []Opportunity       `json:"opportunities" yaml:"opportunities"`
	History            []DailyRecord       `json:"history" yaml:"history"`
	PairSpreads        []MarketPairSpread  `json:"pair_spreads" yaml:"pair_spreads"`
	Convergence        []ConvergenceBucket `json:"convergence" yaml:"convergence"`
	ProfitDistribution []ProfitShare       `json:"profit_distribution" yaml:"profit_distribution"`
	Depths             []MarketDepth       `json:"depths" yaml:"depths"`
	OrderBook          []BookLevel         `json:"order_book" yaml:"order_book"`
	Scenarios          []BridgingScenario  `json:"scenarios" yaml:"scenarios"`
	Steps              []ArchitectureStep  `json:"steps" yaml:"steps"`
	Auction            []AuctionPoint      `json:"auction" yaml:"auction"`
	Links              []NetworkLink       `json:"links" yaml:"links"`
}

// FindOpportunity returns the opportunity with the given ID or ErrNotFound.
func (d Dataset) FindOpportunity(id string) (Opportunity, error) {
	for _, o := range d.Opportunities {
		if o.ID == id {
			return o, nil
		}
	}
	return Opportunity{}, ErrNotFound
}

// DataSource supplies the dashboard dataset. Implementations validate records
// at this boundary; the ranking and statistics code assumes well-formed input.
type DataSource interface {
	Name() string
	Load(ctx context.Context) (Dataset, error)
}
