// Package analytics derives wallet-behavior insight from normalized upstream
// records: trade classification, holding reconstruction, and paced record
// enrichment.
package analytics

import (
	"strings"

	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/normalize"
)

// tagKeys are the raw fields whose values mark the maker's role on a token.
// The upstream tags a maker both per token and per event; roles can appear
// on either list alone.
var tagKeys = []string{"maker_token_tags", "maker_event_tags", "maker_tags", "tags"}

// Classify turns one raw trade item into a TradeEvent. It reports false when
// the item carries no resolvable actor address, in which case the event is
// unusable and the caller should count it as skipped.
func Classify(rec domain.RawRecord) (domain.TradeEvent, bool) {
	actor := normalize.ResolveString(rec, normalize.ActorKeys, "")
	if actor == "" {
		return domain.TradeEvent{}, false
	}
	return domain.TradeEvent{
		Actor:       actor,
		Timestamp:   normalize.ResolveTimestamp(rec),
		Side:        classifySide(rec),
		RoleTags:    collectTags(rec),
		TokenAmount: normalize.ResolveFloat(rec, normalize.TokenAmountKeys, 0),
		USDValue:    normalize.ResolveFloat(rec, normalize.USDValueKeys, 0),
		Price:       normalize.ResolveFloat(rec, normalize.PriceKeys, 0),
	}, true
}

func classifySide(rec domain.RawRecord) domain.TradeSide {
	for _, k := range normalize.SideKeys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "buy", "open", "add":
			return domain.SideBuy
		case "sell", "close", "remove":
			return domain.SideSell
		}
	}
	if v, ok := rec["is_buy"].(bool); ok {
		if v {
			return domain.SideBuy
		}
		return domain.SideSell
	}
	return domain.SideUnknown
}

// collectTags gathers the lowercased union of every tag list on the record.
func collectTags(rec domain.RawRecord) []string {
	var tags []string
	seen := map[string]bool{}
	for _, k := range tagKeys {
		list, ok := rec[k].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				continue
			}
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			tags = append(tags, s)
		}
	}
	return tags
}
