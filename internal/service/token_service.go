// Package service implements the analytics use cases on top of the upstream
// API client, the derivation logic, and the storage layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainpulse/walletlens/internal/analytics"
	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/normalize"
)

// TokenAPI is the slice of the upstream client the token service consumes.
type TokenAPI interface {
	TokenTrades(ctx context.Context, chain, token string, limit int) ([]domain.RawRecord, error)
	TokenTraders(ctx context.Context, chain, token string, limit int, orderby, direction string) ([]domain.RawRecord, error)
	TokenInfo(ctx context.Context, chain, token string) (domain.RawRecord, error)
	WalletHolding(ctx context.Context, chain, wallet, token string) (domain.RawRecord, error)
}

// TokenService answers token-centric questions: who bought first, how long
// holders keep a token, and who deployed it.
type TokenService struct {
	api      TokenAPI
	enricher *analytics.Enricher
	cache    domain.SupplementCache
	chain    string
	logger   *slog.Logger
}

// NewTokenService creates a TokenService. cache may be nil to disable
// supplement caching.
func NewTokenService(api TokenAPI, enricher *analytics.Enricher, cache domain.SupplementCache, chain string, logger *slog.Logger) *TokenService {
	return &TokenService{
		api:      api,
		enricher: enricher,
		cache:    cache,
		chain:    chain,
		logger:   logger,
	}
}

// tradeFetchLimit is how deep into the trade stream derivations look.
const tradeFetchLimit = 100

// FirstBuyers reconstructs the earliest organic buyers of a token and
// enriches each with their per-token holding stats.
func (s *TokenService) FirstBuyers(ctx context.Context, token string) (domain.FirstBuyReport, error) {
	if !common.IsHexAddress(token) {
		return domain.FirstBuyReport{}, fmt.Errorf("token_service: first buyers: %w: %s", domain.ErrBadAddress, token)
	}

	trades, err := s.api.TokenTrades(ctx, s.chain, token, tradeFetchLimit)
	if err != nil {
		return domain.FirstBuyReport{}, fmt.Errorf("token_service: first buyers %s: %w", token, err)
	}

	activity := analytics.Reconstruct(trades)

	// Enrichment operates on raw records keyed by wallet address.
	base := make([]domain.RawRecord, 0, len(activity.FirstBuys))
	for _, fb := range activity.FirstBuys {
		base = append(base, domain.RawRecord{
			"wallet_address": fb.Actor,
			"timestamp":      fb.Timestamp,
			"base_amount":    fb.TokenAmount,
			"amount_usd":     fb.USDValue,
			"price_usd":      fb.Price,
		})
	}
	entries := s.enricher.Enrich(ctx, base, s.supplementFetcher(token))

	meta := s.tokenMetadata(ctx, token, trades, entries)

	return domain.FirstBuyReport{Token: meta, Entries: entries}, nil
}

// HoldTime reconstructs holding behavior for a token from its trade stream.
func (s *TokenService) HoldTime(ctx context.Context, token string) (domain.HoldTimeReport, error) {
	if !common.IsHexAddress(token) {
		return domain.HoldTimeReport{}, fmt.Errorf("token_service: hold time: %w: %s", domain.ErrBadAddress, token)
	}

	trades, err := s.api.TokenTrades(ctx, s.chain, token, tradeFetchLimit)
	if err != nil {
		return domain.HoldTimeReport{}, fmt.Errorf("token_service: hold time %s: %w", token, err)
	}

	activity := analytics.Reconstruct(trades)
	meta := s.tokenMetadata(ctx, token, trades, nil)

	return domain.HoldTimeReport{Token: meta, Activity: activity}, nil
}

// TopTraders returns the token's trader leaderboard enriched with holding
// stats.
func (s *TokenService) TopTraders(ctx context.Context, token string, limit int) ([]domain.EnrichedWalletRecord, error) {
	if !common.IsHexAddress(token) {
		return nil, fmt.Errorf("token_service: top traders: %w: %s", domain.ErrBadAddress, token)
	}

	traders, err := s.api.TokenTraders(ctx, s.chain, token, limit, "profit", "desc")
	if err != nil {
		return nil, fmt.Errorf("token_service: top traders %s: %w", token, err)
	}

	return s.enricher.Enrich(ctx, traders, s.supplementFetcher(token)), nil
}

// supplementFetcher builds the per-wallet holding fetch used during
// enrichment, consulting the cache before the upstream API.
func (s *TokenService) supplementFetcher(token string) analytics.SupplementFetcher {
	return func(ctx context.Context, wallet string) (domain.RawRecord, error) {
		if s.cache != nil {
			if rec, err := s.cache.Get(ctx, wallet, token); err == nil {
				return rec, nil
			} else if !errors.Is(err, domain.ErrNotFound) {
				s.logger.WarnContext(ctx, "token_service: supplement cache read failed",
					slog.String("wallet", wallet),
					slog.String("error", err.Error()),
				)
			}
		}

		rec, err := s.api.WalletHolding(ctx, s.chain, wallet, token)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if cacheErr := s.cache.Set(ctx, wallet, token, rec); cacheErr != nil {
				s.logger.WarnContext(ctx, "token_service: supplement cache write failed",
					slog.String("wallet", wallet),
					slog.String("error", cacheErr.Error()),
				)
			}
		}
		return rec, nil
	}
}

// tokenMetadata reconciles token identity from up to three sources, in
// ascending authority: the trade stream, the first buyer's holding
// supplement, and the token-info endpoint. Later sources overwrite earlier
// ones field by field.
func (s *TokenService) tokenMetadata(ctx context.Context, token string, trades []domain.RawRecord, entries []domain.EnrichedWalletRecord) domain.TokenMetadata {
	meta := domain.TokenMetadata{Address: token}

	// Source 1: the trade stream. Trades embed a token object, and the
	// creator's own trades carry the deploy transaction.
	for _, rec := range trades {
		if tok := rec.Child("token"); tok != nil {
			if meta.Name == "" {
				meta.Name = normalize.ResolveString(tok, []string{"name"}, "")
			}
			if meta.Symbol == "" {
				meta.Symbol = normalize.ResolveString(tok, []string{"symbol"}, "")
			}
			if meta.CreatedAt == 0 {
				meta.CreatedAt = normalize.ResolveFloat(tok, []string{"creation_timestamp", "open_timestamp"}, 0)
			}
		}
		if ev, ok := analytics.Classify(rec); ok && ev.Excluded() && meta.Deployer == "" {
			meta.Deployer = ev.Actor
			meta.DeployTxHash = normalize.ResolveString(rec, []string{"tx_hash", "hash"}, "")
		}
	}

	// Source 2: the first buyer's holding supplement carries a reliable
	// token.creation_timestamp.
	if meta.CreatedAt == 0 {
		for _, e := range entries {
			if !e.Enriched {
				continue
			}
			if tok := e.Record.Child("token"); tok != nil {
				if ts := normalize.ResolveFloat(tok, []string{"creation_timestamp"}, 0); ts > 0 {
					meta.CreatedAt = ts
					break
				}
			}
		}
	}

	// Source 3: the token-info endpoint is authoritative for the deployer.
	info, err := s.api.TokenInfo(ctx, s.chain, token)
	if err != nil {
		s.logger.WarnContext(ctx, "token_service: token info lookup failed",
			slog.String("token", token),
			slog.String("error", err.Error()),
		)
		return meta
	}

	if meta.Name == "" {
		meta.Name = normalize.ResolveString(info, []string{"name"}, "")
	}
	if meta.Symbol == "" {
		meta.Symbol = normalize.ResolveString(info, []string{"symbol"}, "")
	}
	if dev := info.Child("dev"); dev != nil {
		if creator := normalize.ResolveString(dev, []string{"creator_address"}, ""); creator != "" {
			meta.Deployer = creator
		}
	}
	if ts := normalize.ResolveFloat(info, []string{"creation_timestamp"}, 0); ts > 0 {
		meta.CreatedAt = ts
	} else if pool := info.Child("pool"); pool != nil && meta.CreatedAt == 0 {
		meta.CreatedAt = normalize.ResolveFloat(pool, []string{"creation_timestamp"}, 0)
	}

	return meta
}
