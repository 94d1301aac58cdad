package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Snapshot is a persisted analytics result: a ranking, first-buyer report, or
// hold-time report captured at a point in time.
type Snapshot struct {
	ID        int64
	Kind      string // "wallet_rank", "token_rank", "first_buyers", "hold_time"
	Key       string // token or wallet address, or the ranking period
	Period    string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// SnapshotStore persists analytics snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) (int64, error)
	GetLatest(ctx context.Context, kind, key string) (Snapshot, error)
	ListRecent(ctx context.Context, kind string, limit int) ([]Snapshot, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SupplementCache caches per-wallet-per-token supplement records so repeated
// enrichment of the same wallets does not hammer the upstream API.
// Get returns ErrNotFound on miss.
type SupplementCache interface {
	Get(ctx context.Context, wallet, token string) (RawRecord, error)
	Set(ctx context.Context, wallet, token string, rec RawRecord) error
}

// RateLimiter limits upstream call rates across processes.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// LockManager provides distributed locks so concurrent instances do not run
// the same background refresh. Acquire returns ErrLockHeld when another
// holder owns the lock.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// EnvelopeArchiver stores raw upstream response bodies for offline debugging
// of schema drift.
type EnvelopeArchiver interface {
	Archive(ctx context.Context, endpoint, key string, body []byte) error
}
