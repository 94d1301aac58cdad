package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultSupplementTTL = 10 * time.Minute

// SupplementCache implements domain.SupplementCache using JSON-serialized
// records keyed per wallet and token.
//
// Key schema:
//
//	supplement:{wallet}:{token} - string value containing JSON
type SupplementCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSupplementCache creates a SupplementCache backed by the given Client.
// A non-positive ttl falls back to the default.
func NewSupplementCache(c *Client, ttl time.Duration) *SupplementCache {
	if ttl <= 0 {
		ttl = defaultSupplementTTL
	}
	return &SupplementCache{rdb: c.Underlying(), ttl: ttl}
}

func supplementKey(wallet, token string) string {
	return "supplement:" + wallet + ":" + token
}

// Get retrieves a cached supplement record.
// It returns domain.ErrNotFound when the key does not exist.
func (sc *SupplementCache) Get(ctx context.Context, wallet, token string) (domain.RawRecord, error) {
	data, err := sc.rdb.Get(ctx, supplementKey(wallet, token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get supplement %s: %w", wallet, err)
	}

	var rec domain.RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("redis: unmarshal supplement %s: %w", wallet, err)
	}
	return rec, nil
}

// Set stores a supplement record with the configured TTL.
func (sc *SupplementCache) Set(ctx context.Context, wallet, token string, rec domain.RawRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal supplement %s: %w", wallet, err)
	}
	if err := sc.rdb.Set(ctx, supplementKey(wallet, token), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set supplement %s: %w", wallet, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SupplementCache = (*SupplementCache)(nil)
