package domain

// DayLayout is the time layout of DailyRecord.Date.
const DayLayout = "2006-01-02"

// DailyRecord is one day of the historical missed-profit series.
type DailyRecord struct {
	Date          string  `json:"date" yaml:"date"` // YYYY-MM-DD
	MissedProfit  float64 `json:"missed_profit" yaml:"missed_profit"`
	Opportunities int     `json:"opportunities" yaml:"opportunities"`
	AvgSpread     float64 `json:"avg_spread" yaml:"avg_spread"`
}

// MarketPairSpread summarises the average spread observed between two venues.
type MarketPairSpread struct {
	Pair      string  `json:"pair" yaml:"pair"`
	AvgSpread float64 `json:"avg_spread" yaml:"avg_spread"`
	Volume    float64 `json:"volume" yaml:"volume"`
	Frequency int     `json:"frequency" yaml:"frequency"` // occurrences per week
}

// ConvergenceBucket groups opportunities by how long prices took to converge.
type ConvergenceBucket struct {
	TimeRange string  `json:"time_range" yaml:"time_range"`
	Count     int     `json:"count" yaml:"count"`
	AvgProfit float64 `json:"avg_profit" yaml:"avg_profit"`
}

// ProfitShare is the percentage of missed profit attributed to a market type.
type ProfitShare struct {
	Market string  `json:"market" yaml:"market"`
	Value  float64 `json:"value" yaml:"value"`
}
