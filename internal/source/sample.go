package source

import "github.com/alanyoungcy/quiverx/internal/domain"

func quote(platform string, price, volume float64) domain.VenueQuote {
	return domain.VenueQuote{Platform: platform, Price: price, Volume: volume}
}

// Sample is the research dataset the dashboard ships with.
func Sample() domain.Dataset {
	return domain.Dataset{
		KeyMetrics: domain.KeyMetrics{
			TotalOpportunities: 47,
			AvgSpread:          2.3,
			MissedProfit24h:    12847,
			ActiveMarkets:      23,
		},
		Opportunities: []domain.Opportunity{
			{
				ID: "1", Event: "BTC > $100k by Dec 2024",
				PredictionMarket: quote("Polymarket", 0.34, 125000),
				Options:          quote("Deribit", 0.41, 89000),
				Perpetuals:       quote("Binance", 0.38, 340000),
				Spread:           7.2, ProfitPotential: 2847, TimeToExpiry: "45d",
			},
			{
				ID: "2", Event: "ETH > $5k by Q1 2025",
				PredictionMarket: quote("Kalshi", 0.67, 78000),
				Options:          quote("OKX", 0.72, 156000),
				Perpetuals:       quote("Bybit", 0.69, 234000),
				Spread:           5.8, ProfitPotential: 1923, TimeToExpiry: "67d",
			},
			{
				ID: "3", Event: "Tesla Q4 Earnings Beat",
				PredictionMarket: quote("Augur", 0.58, 45000),
				Options:          quote("TD Ameritrade", 0.64, 123000),
				Perpetuals:       quote("FTX", 0.61, 87000),
				Spread:           6.1, ProfitPotential: 1534, TimeToExpiry: "12d",
			},
			{
				ID: "4", Event: "Fed Rate Cut March 2025",
				PredictionMarket: quote("PredictIt", 0.73, 167000),
				Options:          quote("Interactive Brokers", 0.78, 234000),
				Perpetuals:       quote("Kraken", 0.75, 145000),
				Spread:           4.2, ProfitPotential: 987, TimeToExpiry: "89d",
			},
			{
				ID: "5", Event: "AI Chip Shortage Resolution",
				PredictionMarket: quote("Manifold", 0.42, 67000),
				Options:          quote("Robinhood", 0.48, 98000),
				Perpetuals:       quote("Coinbase", 0.45, 178000),
				Spread:           5.4, ProfitPotential: 1245, TimeToExpiry: "156d",
			},
		},
		History: []domain.DailyRecord{
			{Date: "2024-01-01", MissedProfit: 8420, Opportunities: 23, AvgSpread: 1.8},
			{Date: "2024-01-02", MissedProfit: 12150, Opportunities: 31, AvgSpread: 2.1},
			{Date: "2024-01-03", MissedProfit: 9830, Opportunities: 28, AvgSpread: 1.9},
			{Date: "2024-01-04", MissedProfit: 15640, Opportunities: 42, AvgSpread: 2.4},
			{Date: "2024-01-05", MissedProfit: 11290, Opportunities: 35, AvgSpread: 2.0},
			{Date: "2024-01-06", MissedProfit: 18750, Opportunities: 47, AvgSpread: 2.8},
			{Date: "2024-01-07", MissedProfit: 13560, Opportunities: 38, AvgSpread: 2.2},
		},
		PairSpreads: []domain.MarketPairSpread{
			{Pair: "Polymarket-Deribit", AvgSpread: 3.2, Volume: 450000, Frequency: 28},
			{Pair: "Kalshi-Binance", AvgSpread: 2.8, Volume: 780000, Frequency: 35},
			{Pair: "Augur-OKX", AvgSpread: 4.1, Volume: 320000, Frequency: 19},
			{Pair: "PredictIt-TD", AvgSpread: 2.1, Volume: 890000, Frequency: 42},
			{Pair: "Manifold-Coinbase", AvgSpread: 3.7, Volume: 560000, Frequency: 24},
		},
		Convergence: []domain.ConvergenceBucket{
			{TimeRange: "0-5 min", Count: 12, AvgProfit: 2400},
			{TimeRange: "5-15 min", Count: 18, AvgProfit: 1850},
			{TimeRange: "15-30 min", Count: 25, AvgProfit: 1320},
			{TimeRange: "30-60 min", Count: 15, AvgProfit: 980},
			{TimeRange: "1-2 hours", Count: 8, AvgProfit: 650},
			{TimeRange: "2+ hours", Count: 5, AvgProfit: 420},
		},
		ProfitDistribution: []domain.ProfitShare{
			{Market: "Prediction Markets", Value: 35},
			{Market: "Options", Value: 42},
			{Market: "Perpetuals", Value: 23},
		},
		Depths: []domain.MarketDepth{
			{Market: "Polymarket", CurrentLiquidity: 2400000, PotentialLiquidity: 4200000, Depth: domain.DepthDeep},
			{Market: "Deribit", CurrentLiquidity: 5600000, PotentialLiquidity: 6800000, Depth: domain.DepthDeep},
			{Market: "Binance Perps", CurrentLiquidity: 8900000, PotentialLiquidity: 12000000, Depth: domain.DepthVeryDeep},
			{Market: "Kalshi", CurrentLiquidity: 890000, PotentialLiquidity: 2100000, Depth: domain.DepthShallow},
			{Market: "OKX Options", CurrentLiquidity: 3400000, PotentialLiquidity: 5100000, Depth: domain.DepthMedium},
			{Market: "Bybit", CurrentLiquidity: 6700000, PotentialLiquidity: 8900000, Depth: domain.DepthDeep},
		},
		OrderBook: []domain.BookLevel{
			{Price: 0.30, BidVolume: 45000, AskVolume: 38000},
			{Price: 0.32, BidVolume: 67000, AskVolume: 52000},
			{Price: 0.34, BidVolume: 89000, AskVolume: 71000},
			{Price: 0.36, BidVolume: 125000, AskVolume: 94000},
			{Price: 0.38, BidVolume: 156000, AskVolume: 123000},
			{Price: 0.40, BidVolume: 134000, AskVolume: 145000},
			{Price: 0.42, BidVolume: 98000, AskVolume: 167000},
			{Price: 0.44, BidVolume: 76000, AskVolume: 189000},
			{Price: 0.46, BidVolume: 54000, AskVolume: 213000},
			{Price: 0.48, BidVolume: 32000, AskVolume: 234000},
		},
		Scenarios: []domain.BridgingScenario{
			{Scenario: "Before QuiverX", AvgSlippage: 2.8, ExecutionTime: 45, FailureRate: 12},
			{Scenario: "With QuiverX", AvgSlippage: 1.2, ExecutionTime: 18, FailureRate: 3},
		},
		Steps: []domain.ArchitectureStep{
			{ID: 1, Title: "Intent Submission", Description: "User submits cross-market trading intent",
				Details: []string{"Specify desired outcome", "Set price parameters", "Define execution timeline"}},
			{ID: 2, Title: "Filler Competition", Description: "Network participants compete via Dutch auction",
				Details: []string{"Price discovery mechanism", "Competitive bidding", "Reputation-based scoring"}},
			{ID: 3, Title: "Route Optimization", Description: "AI determines optimal cross-market execution path",
				Details: []string{"Liquidity analysis", "Slippage minimization", "Fee optimization"}},
			{ID: 4, Title: "Cross-Market Execution", Description: "Simultaneous execution across multiple venues",
				Details: []string{"Atomic transactions", "Failure rollback", "Settlement confirmation"}},
		},
		Auction: []domain.AuctionPoint{
			{Time: 0, Price: 100, Fillers: 12},
			{Time: 5, Price: 98, Fillers: 8},
			{Time: 10, Price: 96, Fillers: 5},
			{Time: 15, Price: 94, Fillers: 3},
			{Time: 20, Price: 92, Fillers: 1},
			{Time: 25, Price: 90, Fillers: 0},
		},
		Links: []domain.NetworkLink{
			{From: "Prediction Markets", To: "QuiverX Core", Strength: "High"},
			{From: "Options Markets", To: "QuiverX Core", Strength: "High"},
			{From: "Perpetuals", To: "QuiverX Core", Strength: "High"},
			{From: "QuiverX Core", To: "Filler Network", Strength: "Critical"},
			{From: "Filler Network", To: "Execution Layer", Strength: "Critical"},
		},
	}
}
