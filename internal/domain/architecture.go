package domain

// ArchitectureStep is one stage of the intent-based execution flow.
type ArchitectureStep struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Details     []string `json:"details" yaml:"details"`
}

// AuctionPoint is a sample of a descending-price (Dutch) auction.
type AuctionPoint struct {
	Time    int     `json:"time" yaml:"time"` // seconds since start
	Price   float64 `json:"price" yaml:"price"`
	Fillers int     `json:"fillers" yaml:"fillers"`
}

// NetworkLink connects two components of the routing network.
type NetworkLink struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Strength string `json:"strength" yaml:"strength"` // "High" or "Critical"
}
