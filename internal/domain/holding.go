package domain

// maxHoldingSeconds guards against corrupt timestamps: ten years.
const maxHoldingSeconds = 10 * 365 * 24 * 3600

// HoldingInterval is one closed buy-to-sell span for a single actor.
// Duration is always positive and below the corruption guard.
type HoldingInterval struct {
	Actor         string
	BuyTimestamp  float64
	SellTimestamp float64
	Duration      float64 // seconds
}

// ValidHoldingDuration reports whether a buy/sell timestamp pair forms a
// plausible interval.
func ValidHoldingDuration(buyTS, sellTS float64) bool {
	d := sellTS - buyTS
	return d > 0 && d < maxHoldingSeconds
}

// FirstBuyRecord is the earliest qualifying (non-excluded) buy of a token by
// one actor.
type FirstBuyRecord struct {
	Actor       string
	Timestamp   float64
	TokenAmount float64
	USDValue    float64
	Price       float64
}

// HoldingStats aggregates holding behavior across every organic actor of a
// token.
type HoldingStats struct {
	ShortestHold float64 // seconds; 0 when no intervals
	LongestHold  float64
	MeanHold     float64
	TotalBuys    int
	TotalSells   int
	LastActive   float64 // most recent event timestamp across all kept trades
}

// TokenActivity is the full result of reconstructing one token's trade list.
// AllExcluded distinguishes "only the deployer traded" from "no trades at
// all": both yield empty organic sets but read very differently.
type TokenActivity struct {
	FirstBuys     []FirstBuyRecord
	Intervals     []HoldingInterval
	Stats         HoldingStats
	SkippedTrades int // items with no resolvable actor
	AllExcluded   bool
}
