// Package source provides domain.DataSource implementations that do not need
// external infrastructure, plus decorators shared by every source.
package source

import (
	"context"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// Static serves a fixed in-memory dataset. Load returns a deep copy so
// callers cannot alter the shared value.
type Static struct {
	name string
	ds   domain.Dataset
}

// NewStatic wraps ds. It is validated once here.
func NewStatic(name string, ds domain.Dataset) (*Static, error) {
	if err := ValidateDataset(ds); err != nil {
		return nil, err
	}
	return &Static{name: name, ds: Clone(ds)}, nil
}

// NewSample returns the built-in research sample.
func NewSample() *Static {
	return &Static{name: "static", ds: Sample()}
}

// Name implements domain.DataSource.
func (s *Static) Name() string { return s.name }

// Load implements domain.DataSource.
func (s *Static) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	return Clone(s.ds), nil
}

// Clone deep-copies every slice of ds.
func Clone(ds domain.Dataset) domain.Dataset {
	out := ds
	out.Opportunities = append([]domain.Opportunity(nil), ds.Opportunities...)
	out.History = append([]domain.DailyRecord(nil), ds.History...)
	out.PairSpreads = append([]domain.MarketPairSpread(nil), ds.PairSpreads...)
	out.Convergence = append([]domain.ConvergenceBucket(nil), ds.Convergence...)
	out.ProfitDistribution = append([]domain.ProfitShare(nil), ds.ProfitDistribution...)
	out.Depths = append([]domain.MarketDepth(nil), ds.Depths...)
	out.OrderBook = append([]domain.BookLevel(nil), ds.OrderBook...)
	out.Scenarios = append([]domain.BridgingScenario(nil), ds.Scenarios...)
	out.Auction = append([]domain.AuctionPoint(nil), ds.Auction...)
	out.Links = append([]domain.NetworkLink(nil), ds.Links...)
	out.Steps = make([]domain.ArchitectureStep, len(ds.Steps))
	for i, st := range ds.Steps {
		st.Details = append([]string(nil), st.Details...)
		out.Steps[i] = st
	}
	return out
}
