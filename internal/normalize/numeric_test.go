package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPercentageFraction(t *testing.T) {
	pct, frac := ToPercentage(0.62)
	assert.InDelta(t, 62.0, pct, 1e-9)
	assert.InDelta(t, 0.62, frac, 1e-9)
}

func TestToPercentageAlreadyPercent(t *testing.T) {
	pct, frac := ToPercentage(62.0)
	assert.InDelta(t, 62.0, pct, 1e-9)
	assert.InDelta(t, 0.62, frac, 1e-9)
}

func TestToPercentageBoundary(t *testing.T) {
	// exactly 1.0 is a fraction (100%), not 1%
	pct, frac := ToPercentage(1.0)
	assert.InDelta(t, 100.0, pct, 1e-9)
	assert.InDelta(t, 1.0, frac, 1e-9)

	pct, frac = ToPercentage(-1.0)
	assert.InDelta(t, -100.0, pct, 1e-9)
	assert.InDelta(t, -1.0, frac, 1e-9)
}

func TestToPercentageUnparseable(t *testing.T) {
	pct, frac := ToPercentage("not a number")
	assert.Equal(t, 0.0, pct)
	assert.Equal(t, 0.0, frac)
}

func TestToPercentageStringInput(t *testing.T) {
	pct, _ := ToPercentage("0.431")
	assert.InDelta(t, 43.1, pct, 1e-9)
}

func TestCurrencyScaleBuckets(t *testing.T) {
	scaled, suffix := CurrencyScale(2_500_000)
	assert.InDelta(t, 2.5, scaled, 1e-9)
	assert.Equal(t, "M", suffix)

	scaled, suffix = CurrencyScale(1000)
	assert.InDelta(t, 1.0, scaled, 1e-9)
	assert.Equal(t, "K", suffix)

	scaled, suffix = CurrencyScale(999.99)
	assert.InDelta(t, 999.99, scaled, 1e-9)
	assert.Equal(t, "", suffix)

	// Buckets classify on magnitude, not sign.
	scaled, suffix = CurrencyScale(-1500)
	assert.InDelta(t, -1.5, scaled, 1e-9)
	assert.Equal(t, "K", suffix)
}

func TestFormatUSDScale(t *testing.T) {
	assert.Equal(t, "$2.50M", FormatUSD(2_500_000.0))
	assert.Equal(t, "$1.20K", FormatUSD(1200.0))
	assert.Equal(t, "$999.99", FormatUSD(999.99))
	assert.Equal(t, "$-1.50K", FormatUSD(-1500.0))
	assert.Equal(t, "$0.00", FormatUSD("garbage"))
}

func TestFormatTokenAmount(t *testing.T) {
	assert.Equal(t, "3.00M", FormatTokenAmount(3_000_000.0))
	assert.Equal(t, "45.00K", FormatTokenAmount(45_000.0))
	assert.Equal(t, "12.34", FormatTokenAmount(12.34))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2.0d", FormatDuration(2*86400))
	assert.Equal(t, "3.5h", FormatDuration(3.5*3600))
	assert.Equal(t, "2.0m", FormatDuration(120))
	assert.Equal(t, "45s", FormatDuration(45))
}
