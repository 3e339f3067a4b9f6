package ranking

import "github.com/alanyoungcy/quiverx/internal/domain"

// Tier is a coarse significance bucket used to colour rows.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
	TierThin   Tier = "thin"
)

// Boundaries are strict: a value equal to a threshold falls into the lower tier.
const (
	ProfitHighThreshold   = 2000.0
	ProfitMediumThreshold = 1000.0
	SpreadHighThreshold   = 6.0
	SpreadMediumThreshold = 4.0
	PairSpreadThreshold   = 3.0
)

// ProfitTier buckets a profit potential in USD.
func ProfitTier(profit float64) Tier {
	switch {
	case profit > ProfitHighThreshold:
		return TierHigh
	case profit > ProfitMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// SpreadTier buckets a spread percentage.
func SpreadTier(spread float64) Tier {
	switch {
	case spread > SpreadHighThreshold:
		return TierHigh
	case spread > SpreadMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// PairSpreadTier highlights market pairs whose average spread exceeds 3%.
func PairSpreadTier(avg float64) Tier {
	if avg > PairSpreadThreshold {
		return TierHigh
	}
	return TierLow
}

// DepthTier maps a venue depth label to a tier.
func DepthTier(d domain.DepthClass) Tier {
	switch d {
	case domain.DepthVeryDeep:
		return TierHigh
	case domain.DepthDeep:
		return TierMedium
	case domain.DepthShallow:
		return TierThin
	default:
		return TierLow
	}
}

// LinkCritical reports whether a network link carries critical traffic.
func LinkCritical(strength string) bool {
	return strength == "Critical"
}

// Classified pairs an opportunity with its tiers.
type Classified struct {
	domain.Opportunity
	ProfitTier Tier `json:"profit_tier"`
	SpreadTier Tier `json:"spread_tier"`
}

// Classify attaches tiers to each opportunity, preserving order.
func Classify(opps []domain.Opportunity) []Classified {
	out := make([]Classified, 0, len(opps))
	for _, o := range opps {
		out = append(out, Classified{
			Opportunity: o,
			ProfitTier:  ProfitTier(o.ProfitPotential),
			SpreadTier:  SpreadTier(o.Spread),
		})
	}
	return out
}

// CountByTier tallies opportunities per profit tier.
func CountByTier(opps []domain.Opportunity) map[Tier]int {
	counts := map[Tier]int{TierLow: 0, TierMedium: 0, TierHigh: 0}
	for _, o := range opps {
		counts[ProfitTier(o.ProfitPotential)]++
	}
	return counts
}
