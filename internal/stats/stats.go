// Package stats computes the aggregate figures shown on the analytics and
// liquidity views. Aggregates are recomputed from the records on every call.
package stats

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// Sum adds field(r) over rows. An empty input sums to zero.
func Sum[T any](rows []T, field func(T) float64) float64 {
	var total float64
	for _, r := range rows {
		total += field(r)
	}
	return total
}

// Mean returns the arithmetic mean of field over rows. It fails with
// domain.ErrNoData when rows is empty.
func Mean[T any](rows []T, field func(T) float64) (float64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("stats: mean: %w", domain.ErrNoData)
	}
	return Sum(rows, field) / float64(len(rows)), nil
}

// Field selectors for the daily missed-profit series.
func MissedProfit(r domain.DailyRecord) float64     { return r.MissedProfit }
func OpportunityCount(r domain.DailyRecord) float64 { return float64(r.Opportunities) }
func AvgSpread(r domain.DailyRecord) float64        { return r.AvgSpread }

// Round rounds v to places decimal digits, half away from zero.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// AnalyticsSummary is the headline panel of the analytics view.
type AnalyticsSummary struct {
	TotalMissedProfit  float64 `json:"total_missed_profit"`
	DailyAverage       float64 `json:"daily_average"`
	TotalOpportunities int     `json:"total_opportunities"`
	AvgSpread          float64 `json:"avg_spread"`
	Days               int     `json:"days"`
}

// Summarize aggregates a daily series. The daily average is rounded to a
// whole dollar and the spread to one decimal place.
func Summarize(records []domain.DailyRecord) (AnalyticsSummary, error) {
	avg, err := Mean(records, MissedProfit)
	if err != nil {
		return AnalyticsSummary{}, fmt.Errorf("stats: summarize: %w", err)
	}
	spread, err := Mean(records, AvgSpread)
	if err != nil {
		return AnalyticsSummary{}, fmt.Errorf("stats: summarize: %w", err)
	}
	return AnalyticsSummary{
		TotalMissedProfit:  Sum(records, MissedProfit),
		DailyAverage:       Round(avg, 0),
		TotalOpportunities: int(Sum(records, OpportunityCount)),
		AvgSpread:          Round(spread, 1),
		Days:               len(records),
	}, nil
}
