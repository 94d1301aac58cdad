package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/walletlens/internal/domain"
)

func TestClassifyBasicBuy(t *testing.T) {
	ev, ok := Classify(domain.RawRecord{
		"maker":       "0xabc",
		"event":       "buy",
		"timestamp":   1700000000.0,
		"base_amount": "150000",
		"amount_usd":  42.5,
		"price_usd":   0.00028,
	})
	require.True(t, ok)
	assert.Equal(t, "0xabc", ev.Actor)
	assert.Equal(t, domain.SideBuy, ev.Side)
	assert.Equal(t, 1700000000.0, ev.Timestamp)
	assert.Equal(t, 150000.0, ev.TokenAmount)
	assert.Equal(t, 42.5, ev.USDValue)
	assert.False(t, ev.Excluded())
}

func TestClassifyNoActor(t *testing.T) {
	_, ok := Classify(domain.RawRecord{"event": "buy", "timestamp": 1.0})
	assert.False(t, ok)
}

func TestClassifySideAliases(t *testing.T) {
	cases := map[string]domain.TradeSide{
		"buy": domain.SideBuy, "Buy": domain.SideBuy, "open": domain.SideBuy,
		"sell": domain.SideSell, "SELL": domain.SideSell, "close": domain.SideSell,
		"transfer": domain.SideUnknown,
	}
	for raw, want := range cases {
		ev, ok := Classify(domain.RawRecord{"maker": "0x1", "side": raw})
		require.True(t, ok)
		assert.Equal(t, want, ev.Side, "side %q", raw)
	}
}

func TestClassifyIsBuyFallback(t *testing.T) {
	ev, _ := Classify(domain.RawRecord{"maker": "0x1", "is_buy": true})
	assert.Equal(t, domain.SideBuy, ev.Side)

	ev, _ = Classify(domain.RawRecord{"maker": "0x1", "is_buy": false})
	assert.Equal(t, domain.SideSell, ev.Side)

	// explicit side wins over is_buy
	ev, _ = Classify(domain.RawRecord{"maker": "0x1", "event": "sell", "is_buy": true})
	assert.Equal(t, domain.SideSell, ev.Side)

	ev, _ = Classify(domain.RawRecord{"maker": "0x1"})
	assert.Equal(t, domain.SideUnknown, ev.Side)
}

func TestClassifyCreatorTagExcluded(t *testing.T) {
	ev, ok := Classify(domain.RawRecord{
		"maker":           "0xdead",
		"event":           "buy",
		"maker_token_tags": []any{"Creator"},
	})
	require.True(t, ok)
	assert.True(t, ev.Excluded())

	ev, _ = Classify(domain.RawRecord{
		"maker": "0xbeef",
		"event": "buy",
		"tags":  []any{"smart_degen", "sniper"},
	})
	assert.False(t, ev.Excluded())
}

func TestClassifyEventTagExcluded(t *testing.T) {
	ev, ok := Classify(domain.RawRecord{
		"maker":            "0xdev",
		"event":            "buy",
		"maker_event_tags": []any{"creator"},
	})
	require.True(t, ok)
	assert.True(t, ev.Excluded())
}

func TestClassifyTagUnion(t *testing.T) {
	ev, _ := Classify(domain.RawRecord{
		"maker":            "0x1",
		"maker_token_tags": []any{"sniper"},
		"tags":             []any{"deployer", "sniper"},
	})
	assert.ElementsMatch(t, []string{"sniper", "deployer"}, ev.RoleTags)
	assert.True(t, ev.Excluded())
}
