package domain

// DepthClass is a coarse label for how much resting liquidity a venue has.
type DepthClass string

const (
	DepthVeryDeep DepthClass = "Very Deep"
	DepthDeep     DepthClass = "Deep"
	DepthMedium   DepthClass = "Medium"
	DepthShallow  DepthClass = "Shallow"
)

// MarketDepth compares a venue's current liquidity with what it could reach
// if order flow were bridged across venues.
type MarketDepth struct {
	Market             string     `json:"market" yaml:"market"`
	CurrentLiquidity   float64    `json:"current_liquidity" yaml:"current_liquidity"`
	PotentialLiquidity float64    `json:"potential_liquidity" yaml:"potential_liquidity"`
	Depth              DepthClass `json:"depth" yaml:"depth"`
}

// BookLevel is one price rung of an aggregated order book ladder.
type BookLevel struct {
	Price     float64 `json:"price" yaml:"price"`
	BidVolume float64 `json:"bid_volume" yaml:"bid_volume"`
	AskVolume float64 `json:"ask_volume" yaml:"ask_volume"`
}

// BridgingScenario captures execution quality under one routing regime.
type BridgingScenario struct {
	Scenario      string  `json:"scenario" yaml:"scenario"`
	AvgSlippage   float64 `json:"avg_slippage" yaml:"avg_slippage"`     // percent
	ExecutionTime float64 `json:"execution_time" yaml:"execution_time"` // seconds
	FailureRate   float64 `json:"failure_rate" yaml:"failure_rate"`     // percent
}
