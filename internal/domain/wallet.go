package domain

// SupplementKeys are the canonical per-wallet-per-token fields merged from
// the holding-stats supplement into a base record. Supplement values win on
// conflict; they are fresher and more specific than ranking data. The nested
// token object rides along because it carries the creation timestamp used
// for metadata reconciliation.
var SupplementKeys = []string{
	"history_total_buys",
	"history_total_sells",
	"realized_profit",
	"unrealized_profit",
	"total_profit",
	"last_active_timestamp",
	"history_bought_amount",
	"history_bought_cost",
	"token",
}

// EnrichedWalletRecord is a base ranking record plus, when the supplement
// fetch succeeded, the merged canonical fields. Record is always a copy of
// the base, never a reference to it.
type EnrichedWalletRecord struct {
	Address  string
	Record   RawRecord
	Enriched bool
}

// TokenMetadata is the deployer/creation view of a token, reconciled from up
// to three sources (trade stream, token-info endpoint, holding supplement).
type TokenMetadata struct {
	Address      string
	Name         string
	Symbol       string
	Deployer     string
	CreatedAt    float64 // unix seconds; 0 when unknown
	DeployTxHash string
}

// FirstBuyReport is the enriched first-buyers answer for one token.
type FirstBuyReport struct {
	Token   TokenMetadata
	Entries []EnrichedWalletRecord
}

// HoldTimeReport is the holding-behavior answer for one token.
type HoldTimeReport struct {
	Token    TokenMetadata
	Activity TokenActivity
}
