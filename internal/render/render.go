// Package render prints dashboard views as terminal tables.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/ranking"
)

var printer = message.NewPrinter(language.English)

// USD formats v as a whole-dollar amount with thousands separators.
func USD(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// Number formats v with thousands separators and no decimals.
func Number(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// Compact formats large amounts as 2.4M or 890K.
func Compact(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.0fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

var tierColors = map[ranking.Tier]*color.Color{
	ranking.TierHigh:   color.New(color.FgGreen, color.Bold),
	ranking.TierMedium: color.New(color.FgYellow),
	ranking.TierLow:    color.New(color.FgWhite),
	ranking.TierThin:   color.New(color.FgRed),
}

func paint(t ranking.Tier, s string) string {
	if c, ok := tierColors[t]; ok {
		return c.Sprint(s)
	}
	return s
}

func arrow(state ranking.SortState, key ranking.SortKey) string {
	if state.Key != key {
		return ""
	}
	if state.Direction == ranking.Descending {
		return " ↓"
	}
	return " ↑"
}

// Arbitrage writes the ranked opportunity table.
func Arbitrage(w io.Writer, v dashboard.ArbitrageView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "EVENT\tPREDICTION\tOPTIONS\tPERPETUALS\tSPREAD%s\tPROFIT%s\tEXPIRY\n",
		arrow(v.Sort, ranking.SortBySpread), arrow(v.Sort, ranking.SortByProfit))
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%s %.2f\t%s %.2f\t%s %.2f\t%s\t%s\t%s\n",
			r.Event,
			r.PredictionMarket.Platform, r.PredictionMarket.Price,
			r.Options.Platform, r.Options.Price,
			r.Perpetuals.Platform, r.Perpetuals.Price,
			paint(r.SpreadTier, fmt.Sprintf("%.1f%%", r.Spread)),
			paint(r.ProfitTier, USD(r.ProfitPotential)),
			r.TimeToExpiry,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d active opportunities\n", v.ActiveCount)
	return err
}

// Analytics writes the summary panel and the market pair table.
func Analytics(w io.Writer, v dashboard.AnalyticsView) error {
	s := v.Summary
	fmt.Fprintf(w, "Total missed profit (%dd): %s\n", s.Days, USD(s.TotalMissedProfit))
	fmt.Fprintf(w, "Daily average:           %s\n", USD(s.DailyAverage))
	fmt.Fprintf(w, "Total opportunities:     %s\n", Number(float64(s.TotalOpportunities)))
	fmt.Fprintf(w, "Average spread:          %.1f%%\n\n", s.AvgSpread)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIR\tAVG SPREAD\tVOLUME\tFREQ/WEEK")
	for _, p := range v.Pairs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			p.Pair, paint(p.Tier, fmt.Sprintf("%.1f%%", p.AvgSpread)), Compact(p.Volume), p.Frequency)
	}
	return tw.Flush()
}

// Liquidity writes the venue depth table.
func Liquidity(w io.Writer, v dashboard.LiquidityView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MARKET\tCURRENT\tPOTENTIAL\tUPLIFT\tDEPTH")
	for _, d := range v.Depths {
		fmt.Fprintf(tw, "%s\t%s\t%s\t+%.1f%%\t%s\n",
			d.Market, Compact(d.CurrentLiquidity), Compact(d.PotentialLiquidity), d.UpliftPct,
			paint(d.Tier, string(d.Depth)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.Improvement != nil {
		_, err := fmt.Fprintf(w, "\nBridging: slippage -%.0f%%, execution %.0f%% faster, failures -%.0f%%\n",
			v.Improvement.SlippageReduction, v.Improvement.SpeedImprovement, v.Improvement.FailureRateReduction)
		return err
	}
	return nil
}

// Snapshots writes one line per exported snapshot object.
func Snapshots(w io.Writer, infos []domain.BlobInfo) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "no snapshots exported yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODIFIED\tSIZE\tKEY")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			info.LastModified.UTC().Format(time.RFC3339), Number(float64(info.Size)), info.Path)
	}
	return tw.Flush()
}
