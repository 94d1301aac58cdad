package analytics

import (
	"sort"

	"github.com/chainpulse/walletlens/internal/domain"
)

// Reconstruct rebuilds per-actor holding behavior from a token's raw trade
// list. The upstream API only serves trade streams, so first buys and holding
// intervals are derived here:
//
//   - the first buy per actor is their earliest buy with a real timestamp;
//   - each sell closes an interval against the actor's most recent prior buy.
//
// Buys are not consumed by matching: partial sells against one position each
// measure from the same buy. Trades by creator/deployer/owner-tagged actors
// are excluded throughout; trades with an unknown side count as buys, which
// is how the upstream reports legacy swap events.
func Reconstruct(items []domain.RawRecord) domain.TokenActivity {
	var (
		events   []domain.TradeEvent
		skipped  int
		anyActor bool
	)
	for _, rec := range items {
		ev, ok := Classify(rec)
		if !ok {
			skipped++
			continue
		}
		anyActor = true
		if ev.Excluded() {
			continue
		}
		events = append(events, ev)
	}

	act := domain.TokenActivity{
		FirstBuys:     []domain.FirstBuyRecord{},
		Intervals:     []domain.HoldingInterval{},
		SkippedTrades: skipped,
		AllExcluded:   anyActor && len(events) == 0,
	}
	if len(events) == 0 {
		return act
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})

	buysByActor := make(map[string][]float64)
	firstBuy := make(map[string]domain.FirstBuyRecord)
	var firstBuyOrder []string

	for _, ev := range events {
		if ev.Timestamp > act.Stats.LastActive {
			act.Stats.LastActive = ev.Timestamp
		}
		switch ev.Side {
		case domain.SideSell:
			act.Stats.TotalSells++
			if buyTS, ok := latestBuyBefore(buysByActor[ev.Actor], ev.Timestamp); ok {
				act.Intervals = append(act.Intervals, domain.HoldingInterval{
					Actor:         ev.Actor,
					BuyTimestamp:  buyTS,
					SellTimestamp: ev.Timestamp,
					Duration:      ev.Timestamp - buyTS,
				})
			}
		default:
			// Unclassifiable sides count as buys for activity totals and
			// interval pairing, but only an explicit buy can be a first buy.
			act.Stats.TotalBuys++
			buysByActor[ev.Actor] = append(buysByActor[ev.Actor], ev.Timestamp)
			if ev.Side != domain.SideBuy {
				continue
			}
			if _, seen := firstBuy[ev.Actor]; !seen && ev.Timestamp > 0 {
				firstBuy[ev.Actor] = domain.FirstBuyRecord{
					Actor:       ev.Actor,
					Timestamp:   ev.Timestamp,
					TokenAmount: ev.TokenAmount,
					USDValue:    ev.USDValue,
					Price:       ev.Price,
				}
				firstBuyOrder = append(firstBuyOrder, ev.Actor)
			}
		}
	}

	for _, actor := range firstBuyOrder {
		act.FirstBuys = append(act.FirstBuys, firstBuy[actor])
	}

	var sum float64
	for i, iv := range act.Intervals {
		sum += iv.Duration
		if i == 0 || iv.Duration < act.Stats.ShortestHold {
			act.Stats.ShortestHold = iv.Duration
		}
		if iv.Duration > act.Stats.LongestHold {
			act.Stats.LongestHold = iv.Duration
		}
	}
	if n := len(act.Intervals); n > 0 {
		act.Stats.MeanHold = sum / float64(n)
	}
	return act
}

// latestBuyBefore finds the most recent buy timestamp that forms a valid
// interval with the sell timestamp.
func latestBuyBefore(buys []float64, sellTS float64) (float64, bool) {
	for i := len(buys) - 1; i >= 0; i-- {
		if domain.ValidHoldingDuration(buys[i], sellTS) {
			return buys[i], true
		}
	}
	return 0, false
}
