// Package normalize absorbs the upstream API's schema variability. It is the
// only package that knows the raw field aliases; everything downstream works
// with canonical names resolved here.
package normalize

import (
	"strconv"
	"strings"

	"github.com/chainpulse/walletlens/internal/domain"
)

// Alias tables for fields observed under multiple names across endpoints and
// API versions. Order matters: the first present, non-null key wins.
var (
	ActorKeys       = []string{"maker", "trader", "wallet_address", "from", "address"}
	SideKeys        = []string{"event", "side", "trade_type", "direction"}
	TimestampKeys   = []string{"timestamp", "ts", "time", "block_time", "created_at"}
	TokenAmountKeys = []string{"base_amount", "amount", "token_amount", "qty"}
	USDValueKeys    = []string{"amount_usd", "value_usd", "usd_value", "volume_usd"}
	PriceKeys       = []string{"price_usd", "price", "avg_price"}
	TokenAddrKeys   = []string{"address", "token_address"}
)

// Resolve returns the value of the first candidate key present in rec with a
// non-null value, or def when none match. It never fails on missing keys.
func Resolve(rec domain.RawRecord, keys []string, def any) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v
		}
	}
	return def
}

// ResolveString resolves to a non-empty string, or def.
func ResolveString(rec domain.RawRecord, keys []string, def string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// ResolveFloat resolves to a float, parsing string values; unparseable or
// absent values yield def.
func ResolveFloat(rec domain.RawRecord, keys []string, def float64) float64 {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := ParseFloat(v); ok {
			return f
		}
	}
	return def
}

// ResolveTimestamp resolves a unix-seconds timestamp. Absent or unparseable
// values yield 0, which downstream logic treats as "no timestamp".
func ResolveTimestamp(rec domain.RawRecord) float64 {
	for _, k := range TimestampKeys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := ParseFloat(v); ok {
			return f
		}
	}
	return 0
}

// PeriodKeys builds the candidate list for a period-suffixed field: the
// suffixed variant first, then the bare name. Period is one of "1d", "7d",
// "30d"; anything else falls back to "7d".
func PeriodKeys(base, period string) []string {
	switch period {
	case "1d", "7d", "30d":
	default:
		period = "7d"
	}
	return []string{base + "_" + period, base}
}

// ParseFloat coerces a JSON value (float64, int, json.Number-style string,
// bool) into a float. It reports false for anything unparseable.
func ParseFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
