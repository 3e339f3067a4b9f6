package stats

import (
	"fmt"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// Improvement is the percentage reduction from before to after.
func Improvement(before, after float64) (float64, error) {
	if before == 0 {
		return 0, fmt.Errorf("stats: improvement: zero baseline: %w", domain.ErrNoData)
	}
	return (before - after) / before * 100, nil
}

// BridgingImprovement compares execution quality with and without
// cross-venue bridging. All fields are percentages, rounded to whole numbers.
type BridgingImprovement struct {
	SlippageReduction    float64 `json:"slippage_reduction"`
	SpeedImprovement     float64 `json:"speed_improvement"`
	FailureRateReduction float64 `json:"failure_rate_reduction"`
}

// CompareScenarios derives the improvement of after over before.
func CompareScenarios(before, after domain.BridgingScenario) (BridgingImprovement, error) {
	slip, err := Improvement(before.AvgSlippage, after.AvgSlippage)
	if err != nil {
		return BridgingImprovement{}, fmt.Errorf("stats: slippage: %w", err)
	}
	speed, err := Improvement(before.ExecutionTime, after.ExecutionTime)
	if err != nil {
		return BridgingImprovement{}, fmt.Errorf("stats: execution time: %w", err)
	}
	fail, err := Improvement(before.FailureRate, after.FailureRate)
	if err != nil {
		return BridgingImprovement{}, fmt.Errorf("stats: failure rate: %w", err)
	}
	return BridgingImprovement{
		SlippageReduction:    Round(slip, 0),
		SpeedImprovement:     Round(speed, 0),
		FailureRateReduction: Round(fail, 0),
	}, nil
}

// MarketUplift is the additional liquidity a venue would gain from bridging.
type MarketUplift struct {
	Market  string  `json:"market"`
	Uplift  float64 `json:"uplift"`
	Percent float64 `json:"percent"`
}

// UpliftSummary aggregates MarketUplift over all venues.
type UpliftSummary struct {
	Markets        []MarketUplift `json:"markets"`
	TotalCurrent   float64        `json:"total_current"`
	TotalPotential float64        `json:"total_potential"`
	TotalUplift    float64        `json:"total_uplift"`
	TotalUpliftPct float64        `json:"total_uplift_pct"`
}

// LiquidityUplift computes per-venue and overall liquidity uplift. Venues
// with zero current liquidity report a zero percentage.
func LiquidityUplift(depths []domain.MarketDepth) (UpliftSummary, error) {
	if len(depths) == 0 {
		return UpliftSummary{}, fmt.Errorf("stats: liquidity uplift: %w", domain.ErrNoData)
	}
	out := UpliftSummary{Markets: make([]MarketUplift, 0, len(depths))}
	for _, d := range depths {
		u := MarketUplift{Market: d.Market, Uplift: d.PotentialLiquidity - d.CurrentLiquidity}
		if d.CurrentLiquidity > 0 {
			u.Percent = Round(u.Uplift/d.CurrentLiquidity*100, 1)
		}
		out.Markets = append(out.Markets, u)
		out.TotalCurrent += d.CurrentLiquidity
		out.TotalPotential += d.PotentialLiquidity
	}
	out.TotalUplift = out.TotalPotential - out.TotalCurrent
	if out.TotalCurrent > 0 {
		out.TotalUpliftPct = Round(out.TotalUplift/out.TotalCurrent*100, 1)
	}
	return out, nil
}
