package domain

// TradeSide is the direction of a single swap event.
type TradeSide string

const (
	SideBuy     TradeSide = "buy"
	SideSell    TradeSide = "sell"
	SideUnknown TradeSide = "unknown"
)

// excludedRoles are the maker tags that mark non-organic activity. Trades by
// tagged addresses (token creators and friends) are filtered out of first-buy
// and holding analysis.
var excludedRoles = map[string]bool{
	"creator":  true,
	"deployer": true,
	"owner":    true,
}

// TradeEvent is one classified on-chain swap. Constructed once per raw trade
// item by the classifier and immutable afterwards.
type TradeEvent struct {
	Actor       string
	Timestamp   float64 // unix seconds; 0 when absent
	Side        TradeSide
	RoleTags    []string // lowercased union of maker token/event tags
	TokenAmount float64
	USDValue    float64
	Price       float64
}

// Excluded reports whether the trade belongs to a tagged creator/deployer/
// owner address and must be dropped from organic-activity analysis.
func (t TradeEvent) Excluded() bool {
	for _, tag := range t.RoleTags {
		if excludedRoles[tag] {
			return true
		}
	}
	return false
}
