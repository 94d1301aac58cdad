package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/walletlens/internal/domain"
)

func trade(actor, side string, ts float64) domain.RawRecord {
	return domain.RawRecord{"maker": actor, "event": side, "timestamp": ts}
}

func TestReconstructFirstBuys(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "buy", 100),
		trade("0xb", "buy", 150),
		trade("0xa", "buy", 200), // second buy, not a first
	})
	require.Len(t, act.FirstBuys, 2)
	assert.Equal(t, "0xa", act.FirstBuys[0].Actor)
	assert.Equal(t, 100.0, act.FirstBuys[0].Timestamp)
	assert.Equal(t, "0xb", act.FirstBuys[1].Actor)
	assert.Equal(t, 3, act.Stats.TotalBuys)
}

func TestReconstructZeroTimestampBuyNotFirst(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "buy", 0),
		trade("0xa", "buy", 500),
	})
	require.Len(t, act.FirstBuys, 1)
	assert.Equal(t, 500.0, act.FirstBuys[0].Timestamp)
}

func TestReconstructSellMatchesMostRecentPriorBuy(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "buy", 100),
		trade("0xa", "buy", 300),
		trade("0xa", "sell", 400),
	})
	require.Len(t, act.Intervals, 1)
	assert.Equal(t, 300.0, act.Intervals[0].BuyTimestamp)
	assert.Equal(t, 100.0, act.Intervals[0].Duration)
}

func TestReconstructBuysNotConsumed(t *testing.T) {
	// two partial sells against the same buy both measure from it
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "buy", 100),
		trade("0xa", "sell", 200),
		trade("0xa", "sell", 350),
	})
	require.Len(t, act.Intervals, 2)
	assert.Equal(t, 100.0, act.Intervals[0].Duration)
	assert.Equal(t, 250.0, act.Intervals[1].Duration)
	assert.Equal(t, 2, act.Stats.TotalSells)
}

func TestReconstructSellWithoutPriorBuyIgnored(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "sell", 100),
		trade("0xa", "buy", 200),
	})
	assert.Empty(t, act.Intervals)
	assert.Equal(t, 1, act.Stats.TotalSells)
}

func TestReconstructCorruptDurationGuard(t *testing.T) {
	// over ten years apart: not a plausible interval
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "buy", 100),
		trade("0xa", "sell", 100+11*365*24*3600),
	})
	assert.Empty(t, act.Intervals)
}

func TestReconstructExcludesTaggedActors(t *testing.T) {
	dev := domain.RawRecord{
		"maker": "0xdev", "event": "buy", "timestamp": 50.0,
		"maker_token_tags": []any{"creator"},
	}
	act := Reconstruct([]domain.RawRecord{dev, trade("0xa", "buy", 100)})
	require.Len(t, act.FirstBuys, 1)
	assert.Equal(t, "0xa", act.FirstBuys[0].Actor)
	assert.False(t, act.AllExcluded)

	act = Reconstruct([]domain.RawRecord{dev})
	assert.Empty(t, act.FirstBuys)
	assert.True(t, act.AllExcluded)
}

func TestReconstructEmptyVsAllExcluded(t *testing.T) {
	act := Reconstruct(nil)
	assert.False(t, act.AllExcluded)
	assert.NotNil(t, act.FirstBuys)
	assert.NotNil(t, act.Intervals)
}

func TestReconstructSkippedTrades(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		{"event": "buy", "timestamp": 100.0}, // no actor
		trade("0xa", "buy", 200),
	})
	assert.Equal(t, 1, act.SkippedTrades)
	assert.Len(t, act.FirstBuys, 1)
}

func TestReconstructUnknownSideCountsAsBuy(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		{"maker": "0xa", "timestamp": 100.0},
		trade("0xa", "sell", 250),
	})
	require.Len(t, act.Intervals, 1)
	assert.Equal(t, 150.0, act.Intervals[0].Duration)
}

func TestReconstructEventTaggedCreatorNotFirst(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		{"maker": "0xdev", "event": "buy", "timestamp": 50.0, "maker_event_tags": []any{"creator"}},
		trade("0xa", "buy", 100),
	})
	require.Len(t, act.FirstBuys, 1)
	assert.Equal(t, "0xa", act.FirstBuys[0].Actor)
}

func TestReconstructSidelessTradeNotFirstBuy(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		{"maker": "0xa", "timestamp": 100.0},
		trade("0xb", "buy", 200),
	})
	require.Len(t, act.FirstBuys, 1)
	assert.Equal(t, "0xb", act.FirstBuys[0].Actor)
	assert.Equal(t, 2, act.Stats.TotalBuys)
}

func TestReconstructStats(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "buy", 100),
		trade("0xa", "sell", 200), // 100s
		trade("0xb", "buy", 100),
		trade("0xb", "sell", 500), // 400s
	})
	assert.Equal(t, 100.0, act.Stats.ShortestHold)
	assert.Equal(t, 400.0, act.Stats.LongestHold)
	assert.Equal(t, 250.0, act.Stats.MeanHold)
	assert.Equal(t, 500.0, act.Stats.LastActive)
}

func TestReconstructUnsortedInput(t *testing.T) {
	act := Reconstruct([]domain.RawRecord{
		trade("0xa", "sell", 400),
		trade("0xa", "buy", 100),
	})
	require.Len(t, act.Intervals, 1)
	assert.Equal(t, 300.0, act.Intervals[0].Duration)
}
