package domain

// VenueQuote is one venue's view of an opportunity: the platform it trades
// on, its price (implied probability in [0,1] or a dollar figure) and the
// volume traded there.
type VenueQuote struct {
	Platform string  `json:"platform" yaml:"platform"`
	Price    float64 `json:"price" yaml:"price"`
	Volume   float64 `json:"volume" yaml:"volume"`
}

// Opportunity is a cross-market price discrepancy for a single event, quoted
// on a prediction market, an options venue and a perpetuals venue.
//
// Spread and ProfitPotential are precomputed upstream. Records are treated
// as read-only values; nothing in this module mutates them after load.
type Opportunity struct {
	ID               string     `json:"id" yaml:"id"`
	Event            string     `json:"event" yaml:"event"`
	PredictionMarket VenueQuote `json:"prediction_market" yaml:"prediction_market"`
	Options          VenueQuote `json:"options" yaml:"options"`
	Perpetuals       VenueQuote `json:"perpetuals" yaml:"perpetuals"`
	Spread           float64    `json:"spread" yaml:"spread"`                     // percent
	ProfitPotential  float64    `json:"profit_potential" yaml:"profit_potential"` // USD
	TimeToExpiry     string     `json:"time_to_expiry" yaml:"time_to_expiry"`     // e.g. "45d"
}

// Venues returns the three quotes in display order.
func (o Opportunity) Venues() [3]VenueQuote {
	return [3]VenueQuote{o.PredictionMarket, o.Options, o.Perpetuals}
}
