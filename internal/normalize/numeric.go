package normalize

import (
	"fmt"
	"math"
)

// ToPercentage coerces a win-rate-like value into a percentage. Upstream
// reports these sometimes as a fraction (0.62) and sometimes already as a
// percentage (62.0); any magnitude at or below 1.0 is treated as a fraction
// and scaled by 100. The second return is the fractional form.
func ToPercentage(v any) (pct, frac float64) {
	f, ok := ParseFloat(v)
	if !ok {
		return 0, 0
	}
	if math.Abs(f) <= 1.0 {
		return f * 100, f
	}
	return f, f / 100
}

// CurrencyScale buckets a currency magnitude: millions at or above 1e6,
// thousands at or above 1e3, units below that. It returns the value divided
// by the bucket size and the bucket suffix ("M", "K", or "").
func CurrencyScale(f float64) (scaled float64, suffix string) {
	abs := math.Abs(f)
	switch {
	case abs >= 1e6:
		return f / 1e6, "M"
	case abs >= 1e3:
		return f / 1e3, "K"
	default:
		return f, ""
	}
}

// FormatUSD renders a currency amount with magnitude-scaled units.
func FormatUSD(v any) string {
	f, ok := ParseFloat(v)
	if !ok {
		return "$0.00"
	}
	scaled, suffix := CurrencyScale(f)
	return fmt.Sprintf("$%.2f%s", scaled, suffix)
}

// FormatTokenAmount renders a token quantity with the same scale buckets as
// FormatUSD but no currency sign.
func FormatTokenAmount(v any) string {
	f, ok := ParseFloat(v)
	if !ok {
		return "0"
	}
	scaled, suffix := CurrencyScale(f)
	return fmt.Sprintf("%.2f%s", scaled, suffix)
}

// FormatDuration renders a duration in seconds as a compact human string,
// picking the largest unit that keeps the value at or above one.
func FormatDuration(seconds float64) string {
	switch {
	case seconds >= 86400:
		return fmt.Sprintf("%.1fd", seconds/86400)
	case seconds >= 3600:
		return fmt.Sprintf("%.1fh", seconds/3600)
	case seconds >= 60:
		return fmt.Sprintf("%.1fm", seconds/60)
	default:
		return fmt.Sprintf("%.0fs", seconds)
	}
}
