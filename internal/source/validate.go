package source

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alanyoungcy/quiverx/internal/domain"
)

// ValidateDataset checks the records that the ranking and statistics code
// relies on. Every problem is reported; each wraps domain.ErrInvalidRecord.
func ValidateDataset(ds domain.Dataset) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidRecord}, args...)...))
	}

	seen := make(map[string]struct{}, len(ds.Opportunities))
	for i, o := range ds.Opportunities {
		if o.ID == "" {
			bad("opportunity[%d]: empty id", i)
		} else if _, dup := seen[o.ID]; dup {
			bad("opportunity[%d]: duplicate id %q", i, o.ID)
		} else {
			seen[o.ID] = struct{}{}
		}
		if !finite(o.Spread) {
			bad("opportunity %q: spread is not a finite number", o.ID)
		}
		if !finite(o.ProfitPotential) {
			bad("opportunity %q: profit potential is not a finite number", o.ID)
		}
		for _, q := range o.Venues() {
			if !finite(q.Price) || q.Price < 0 {
				bad("opportunity %q: %s price %v out of range", o.ID, q.Platform, q.Price)
			}
			if !finite(q.Volume) || q.Volume < 0 {
				bad("opportunity %q: %s volume %v out of range", o.ID, q.Platform, q.Volume)
			}
		}
	}

	for i, r := range ds.History {
		if r.Date == "" {
			bad("history[%d]: empty date", i)
		} else if _, err := time.Parse(domain.DayLayout, r.Date); err != nil {
			bad("history[%d]: date %q is not YYYY-MM-DD", i, r.Date)
		}
		if !finite(r.MissedProfit) || !finite(r.AvgSpread) {
			bad("history[%d]: non-finite value", i)
		}
		if r.Opportunities < 0 {
			bad("history[%d]: negative opportunity count", i)
		}
	}

	for i, d := range ds.Depths {
		if !finite(d.CurrentLiquidity) || d.CurrentLiquidity < 0 ||
			!finite(d.PotentialLiquidity) || d.PotentialLiquidity < 0 {
			bad("depth[%d] %s: liquidity out of range", i, d.Market)
		}
	}

	return errors.Join(errs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
