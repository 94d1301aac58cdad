package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/walletlens/internal/domain"
)

func newTestEnricher(policy Policy) (*Enricher, *[]time.Duration) {
	e := NewEnricher(policy)
	var sleeps []time.Duration
	e.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return e, &sleeps
}

func baseRecords(addrs ...string) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, domain.RawRecord{"wallet_address": a, "pnl": 1.5})
	}
	return out
}

func TestEnrichMergesSupplementFields(t *testing.T) {
	e, _ := newTestEnricher(Policy{BatchSize: 10})
	out := e.Enrich(context.Background(), baseRecords("0xa"), func(_ context.Context, w string) (domain.RawRecord, error) {
		return domain.RawRecord{
			"realized_profit": 250.0,
			"total_profit":    300.0,
			"irrelevant":      "dropped",
		}, nil
	})
	require.Len(t, out, 1)
	assert.True(t, out[0].Enriched)
	assert.Equal(t, 250.0, out[0].Record["realized_profit"])
	assert.Equal(t, 1.5, out[0].Record["pnl"])
	_, ok := out[0].Record["irrelevant"]
	assert.False(t, ok, "non-canonical supplement fields must not merge")
}

func TestEnrichPartialFailure(t *testing.T) {
	e, _ := newTestEnricher(Policy{BatchSize: 10})
	out := e.Enrich(context.Background(), baseRecords("0xa", "0xb", "0xc"), func(_ context.Context, w string) (domain.RawRecord, error) {
		if w == "0xb" {
			return nil, errors.New("boom")
		}
		return domain.RawRecord{"total_profit": 1.0}, nil
	})
	require.Len(t, out, 3)
	assert.True(t, out[0].Enriched)
	assert.False(t, out[1].Enriched)
	assert.True(t, out[2].Enriched)
	// failed record still carries its base fields
	assert.Equal(t, 1.5, out[1].Record["pnl"])
}

func TestEnrichPacingBetweenFetchesOnly(t *testing.T) {
	e, sleeps := newTestEnricher(Policy{BatchSize: 10, Pace: 500 * time.Millisecond})
	e.Enrich(context.Background(), baseRecords("0xa", "0xb", "0xc"), func(_ context.Context, _ string) (domain.RawRecord, error) {
		return domain.RawRecord{}, nil
	})
	// three fetches, two gaps
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, *sleeps)
}

func TestEnrichBatchCap(t *testing.T) {
	e, _ := newTestEnricher(Policy{BatchSize: 2})
	calls := 0
	out := e.Enrich(context.Background(), baseRecords("0xa", "0xb", "0xc"), func(_ context.Context, _ string) (domain.RawRecord, error) {
		calls++
		return domain.RawRecord{}, nil
	})
	assert.Equal(t, 2, calls)
	require.Len(t, out, 3)
	assert.False(t, out[2].Enriched)
}

func TestEnrichPreservesOrderAndLength(t *testing.T) {
	addrs := []string{"0xe", "0xa", "0xd", "0xb"}
	e, _ := newTestEnricher(Policy{BatchSize: 10})
	out := e.Enrich(context.Background(), baseRecords(addrs...), func(_ context.Context, _ string) (domain.RawRecord, error) {
		return nil, errors.New("down")
	})
	require.Len(t, out, len(addrs))
	for i, a := range addrs {
		assert.Equal(t, a, out[i].Address)
	}
}

func TestEnrichMissingAddressPassesThrough(t *testing.T) {
	e, _ := newTestEnricher(Policy{BatchSize: 10})
	calls := 0
	out := e.Enrich(context.Background(), []domain.RawRecord{{"pnl": 2.0}}, func(_ context.Context, _ string) (domain.RawRecord, error) {
		calls++
		return domain.RawRecord{}, nil
	})
	assert.Equal(t, 0, calls)
	require.Len(t, out, 1)
	assert.False(t, out[0].Enriched)
}

func TestEnrichDoesNotMutateBase(t *testing.T) {
	base := baseRecords("0xa")
	e, _ := newTestEnricher(Policy{BatchSize: 10})
	out := e.Enrich(context.Background(), base, func(_ context.Context, _ string) (domain.RawRecord, error) {
		return domain.RawRecord{"total_profit": 9.0}, nil
	})
	_, ok := base[0]["total_profit"]
	assert.False(t, ok)
	assert.Equal(t, 9.0, out[0].Record["total_profit"])
}

func TestEnrichRetriesRateLimitOnly(t *testing.T) {
	e, sleeps := newTestEnricher(Policy{BatchSize: 10, MaxAttempts: 3, Backoff: time.Second})
	attempts := 0
	out := e.Enrich(context.Background(), baseRecords("0xa"), func(_ context.Context, _ string) (domain.RawRecord, error) {
		attempts++
		if attempts < 3 {
			return nil, &domain.UpstreamError{Kind: domain.KindUpstream, HTTPStatus: 429, Message: "slow down"}
		}
		return domain.RawRecord{"total_profit": 1.0}, nil
	})
	assert.Equal(t, 3, attempts)
	assert.True(t, out[0].Enriched)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *sleeps)

	attempts = 0
	e, _ = newTestEnricher(Policy{BatchSize: 10, MaxAttempts: 3})
	e.Enrich(context.Background(), baseRecords("0xa"), func(_ context.Context, _ string) (domain.RawRecord, error) {
		attempts++
		return nil, errors.New("hard failure")
	})
	assert.Equal(t, 1, attempts, "non-rate-limit errors are not retried")
}

func TestEnrichContextCancelledFillsRemainder(t *testing.T) {
	e := NewEnricher(Policy{BatchSize: 10, Pace: time.Millisecond})
	e.sleep = func(_ context.Context, _ time.Duration) error {
		return context.Canceled
	}
	calls := 0
	out := e.Enrich(context.Background(), baseRecords("0xa", "0xb", "0xc"), func(_ context.Context, _ string) (domain.RawRecord, error) {
		calls++
		return domain.RawRecord{}, nil
	})
	assert.Equal(t, 1, calls, "first fetch runs before any pacing sleep")
	require.Len(t, out, 3)
	assert.True(t, out[0].Enriched)
	assert.False(t, out[1].Enriched)
	assert.False(t, out[2].Enriched)
	assert.Equal(t, 1.5, out[2].Record["pnl"])
}
