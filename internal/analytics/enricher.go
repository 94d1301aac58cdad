package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/normalize"
)

// SupplementFetcher retrieves the per-wallet supplement record for one actor
// address. The token is fixed per Enrich call and captured by the closure.
type SupplementFetcher func(ctx context.Context, wallet string) (domain.RawRecord, error)

// Policy controls enrichment batching and pacing.
type Policy struct {
	// BatchSize caps the number of records that get a supplement fetch;
	// records past the cap pass through unenriched.
	BatchSize int
	// Pace is the delay between consecutive upstream fetches. There is no
	// delay before the first fetch nor after the last.
	Pace time.Duration
	// MaxAttempts bounds per-record fetch attempts; only rate-limit
	// responses are retried.
	MaxAttempts int
	// Backoff is the sleep before a retry.
	Backoff time.Duration
}

// DefaultPolicy matches the upstream API's tolerance for bursts.
func DefaultPolicy() Policy {
	return Policy{
		BatchSize:   10,
		Pace:        500 * time.Millisecond,
		MaxAttempts: 2,
		Backoff:     time.Second,
	}
}

// Enricher merges supplement data into base ranking records. Per-record fetch
// failures are tolerated: the record passes through as an unenriched copy.
type Enricher struct {
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewEnricher(policy Policy) *Enricher {
	if policy.BatchSize <= 0 {
		policy.BatchSize = DefaultPolicy().BatchSize
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &Enricher{policy: policy, sleep: sleepCtx}
}

// Enrich returns one EnrichedWalletRecord per input record, in input order,
// regardless of how many fetches fail. Each output Record is a copy of the
// base; enriched copies additionally carry the canonical supplement fields.
// On context cancellation the remaining records pass through unenriched.
func (e *Enricher) Enrich(ctx context.Context, base []domain.RawRecord, fetch SupplementFetcher) []domain.EnrichedWalletRecord {
	out := make([]domain.EnrichedWalletRecord, 0, len(base))
	fetched := 0
	cancelled := false

	for _, rec := range base {
		addr := normalize.ResolveString(rec, normalize.ActorKeys, "")
		entry := domain.EnrichedWalletRecord{Address: addr, Record: rec.Clone()}

		if addr != "" && fetched < e.policy.BatchSize && !cancelled {
			if fetched > 0 && e.policy.Pace > 0 {
				if err := e.sleep(ctx, e.policy.Pace); err != nil {
					cancelled = true
				}
			}
			if !cancelled {
				fetched++
				if supp, err := e.fetchWithRetry(ctx, addr, fetch); err == nil {
					entry.Record.MergeFrom(supp, domain.SupplementKeys...)
					entry.Enriched = true
				} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					cancelled = true
				}
			}
		}
		out = append(out, entry)
	}
	return out
}

func (e *Enricher) fetchWithRetry(ctx context.Context, wallet string, fetch SupplementFetcher) (domain.RawRecord, error) {
	var lastErr error
	for attempt := 0; attempt < e.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, e.policy.Backoff); err != nil {
				return nil, err
			}
		}
		rec, err := fetch(ctx, wallet)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrRateLimited) {
			break
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
