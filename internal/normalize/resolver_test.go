package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainpulse/walletlens/internal/domain"
)

func TestResolveFirstPresentKeyWins(t *testing.T) {
	rec := domain.RawRecord{
		"trader": "0xbbb",
		"maker":  "0xaaa",
	}
	assert.Equal(t, "0xaaa", ResolveString(rec, ActorKeys, ""))
}

func TestResolveSkipsNullValues(t *testing.T) {
	rec := domain.RawRecord{
		"maker":  nil,
		"trader": "0xbbb",
	}
	assert.Equal(t, "0xbbb", ResolveString(rec, ActorKeys, ""))
}

func TestResolveDefaultWhenAbsent(t *testing.T) {
	rec := domain.RawRecord{"unrelated": 1}
	assert.Equal(t, "n/a", ResolveString(rec, ActorKeys, "n/a"))
	assert.Equal(t, 42.0, ResolveFloat(rec, USDValueKeys, 42.0))
	assert.Equal(t, "dflt", Resolve(rec, SideKeys, "dflt"))
}

func TestResolveFloatParsesStrings(t *testing.T) {
	rec := domain.RawRecord{"amount_usd": "1234.5"}
	assert.Equal(t, 1234.5, ResolveFloat(rec, USDValueKeys, 0))
}

func TestResolveFloatSkipsUnparseable(t *testing.T) {
	rec := domain.RawRecord{
		"amount_usd": "not a number",
		"value_usd":  99.0,
	}
	assert.Equal(t, 99.0, ResolveFloat(rec, USDValueKeys, 0))
}

func TestResolveTimestampAliases(t *testing.T) {
	for _, key := range TimestampKeys {
		rec := domain.RawRecord{key: 1700000000.0}
		assert.Equal(t, 1700000000.0, ResolveTimestamp(rec), "key %s", key)
	}
	assert.Equal(t, 0.0, ResolveTimestamp(domain.RawRecord{}))
}

func TestPeriodKeys(t *testing.T) {
	assert.Equal(t, []string{"realized_profit_7d", "realized_profit"}, PeriodKeys("realized_profit", "7d"))
	assert.Equal(t, []string{"txs_30d", "txs"}, PeriodKeys("txs", "30d"))
	// unrecognized periods fall back to 7d
	assert.Equal(t, []string{"pnl_7d", "pnl"}, PeriodKeys("pnl", "all"))
}

func TestParseFloat(t *testing.T) {
	f, ok := ParseFloat("0.5")
	assert.True(t, ok)
	assert.Equal(t, 0.5, f)

	f, ok = ParseFloat(3.0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = ParseFloat("")
	assert.False(t, ok)
	_, ok = ParseFloat(nil)
	assert.False(t, ok)
	_, ok = ParseFloat(map[string]any{})
	assert.False(t, ok)
}
