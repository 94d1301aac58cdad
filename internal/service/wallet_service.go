package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/normalize"
	"github.com/chainpulse/walletlens/internal/platform/gmgn"
)

// WalletAPI is the slice of the upstream client the wallet service consumes.
type WalletAPI interface {
	WalletRank(ctx context.Context, chain string, q gmgn.WalletRankQuery) ([]domain.RawRecord, error)
	TokenRank(ctx context.Context, chain, period, orderby string, filters []string) ([]domain.RawRecord, error)
	WalletProfitStat(ctx context.Context, chain, wallet, period string) (domain.RawRecord, error)
	WalletHoldings(ctx context.Context, chain, wallet string) ([]domain.RawRecord, error)
	TokenInfo(ctx context.Context, chain, token string) (domain.RawRecord, error)
	Search(ctx context.Context, chain, query string) ([]domain.RawRecord, error)
}

// defaultWalletTags selects the smart-money cohorts on the leaderboard.
var defaultWalletTags = []string{"smart_degen", "pump_smart"}

// tokenRankFilters weeds out scam tokens from the trending list.
var tokenRankFilters = []string{"not_honeypot", "verified", "renounced"}

// WalletService answers wallet-centric questions: leaderboards sliced by
// profitability, activity, and volume, plus per-wallet profit summaries.
type WalletService struct {
	api    WalletAPI
	chain  string
	tags   []string
	logger *slog.Logger
}

// NewWalletService creates a WalletService. Empty tags fall back to the
// default smart-money cohorts.
func NewWalletService(api WalletAPI, chain string, tags []string, logger *slog.Logger) *WalletService {
	if len(tags) == 0 {
		tags = defaultWalletTags
	}
	return &WalletService{
		api:    api,
		chain:  chain,
		tags:   tags,
		logger: logger,
	}
}

// TopWallets returns the most profitable tagged wallets for a period, with
// win rates coerced to canonical percentage form.
func (s *WalletService) TopWallets(ctx context.Context, period string, limit int) ([]domain.RawRecord, error) {
	recs, err := s.api.WalletRank(ctx, s.chain, gmgn.WalletRankQuery{
		Period:  period,
		OrderBy: "pnl_" + period,
		Tags:    s.tags,
	})
	if err != nil {
		return nil, fmt.Errorf("wallet_service: top wallets %s: %w", period, err)
	}
	return annotate(recs, period, limit), nil
}

// LowTxWallets returns profitable wallets that trade infrequently, a proxy
// for selective conviction traders.
func (s *WalletService) LowTxWallets(ctx context.Context, period string, minTxs, maxTxs, limit int) ([]domain.RawRecord, error) {
	recs, err := s.api.WalletRank(ctx, s.chain, gmgn.WalletRankQuery{
		Period:  period,
		OrderBy: "pnl_" + period,
		Tags:    s.tags,
		MinTxs:  minTxs,
		MaxTxs:  maxTxs,
	})
	if err != nil {
		return nil, fmt.Errorf("wallet_service: low tx wallets %s: %w", period, err)
	}
	return annotate(recs, period, limit), nil
}

// HighActivity returns the wallets with the most transactions in a period.
func (s *WalletService) HighActivity(ctx context.Context, period string, limit int) ([]domain.RawRecord, error) {
	recs, err := s.api.WalletRank(ctx, s.chain, gmgn.WalletRankQuery{
		Period:  period,
		OrderBy: "txs",
		Tags:    s.tags,
	})
	if err != nil {
		return nil, fmt.Errorf("wallet_service: high activity %s: %w", period, err)
	}
	return annotate(recs, period, limit), nil
}

// HighVolume returns wallets ordered by traded notional. The upstream offers
// no volume ordering, so the leaderboard is re-sorted client-side on average
// cost times transaction count.
func (s *WalletService) HighVolume(ctx context.Context, period string, limit int) ([]domain.RawRecord, error) {
	recs, err := s.api.WalletRank(ctx, s.chain, gmgn.WalletRankQuery{
		Period:  period,
		OrderBy: "pnl_" + period,
		Tags:    s.tags,
	})
	if err != nil {
		return nil, fmt.Errorf("wallet_service: high volume %s: %w", period, err)
	}

	volume := func(rec domain.RawRecord) float64 {
		avgCost := normalize.ResolveFloat(rec, normalize.PeriodKeys("avg_cost", period), 0)
		txs := normalize.ResolveFloat(rec, normalize.PeriodKeys("txs", period), 0)
		return avgCost * txs
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return volume(recs[i]) > volume(recs[j])
	})

	out := annotate(recs, period, limit)
	for _, rec := range out {
		rec["est_volume_usd"] = volume(rec)
	}
	return out, nil
}

// WalletProfit returns a wallet's profit summary for a period, combined with
// its open position count.
func (s *WalletService) WalletProfit(ctx context.Context, wallet, period string) (domain.RawRecord, error) {
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("wallet_service: wallet profit: %w: %s", domain.ErrBadAddress, wallet)
	}

	stat, err := s.api.WalletProfitStat(ctx, s.chain, wallet, period)
	if err != nil {
		return nil, fmt.Errorf("wallet_service: wallet profit %s: %w", wallet, err)
	}

	out := stat.Clone()
	out["wallet_address"] = wallet
	pct, _ := normalize.ToPercentage(normalize.Resolve(stat, []string{"winrate"}, nil))
	out["winrate_pct"] = pct

	// Position count is best effort; the profit summary stands on its own.
	holdings, err := s.api.WalletHoldings(ctx, s.chain, wallet)
	if err != nil {
		s.logger.WarnContext(ctx, "wallet_service: holdings lookup failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		return out, nil
	}
	out["open_positions"] = len(holdings)
	return out, nil
}

// deployerLookupCap bounds the extra TokenInfo calls per leaderboard.
const deployerLookupCap = 10

// TopTokens returns the trending-token leaderboard with scam filters applied,
// ordered by peak market cap. The top entries get their deployer filled in
// from the token-info endpoint, best effort.
func (s *WalletService) TopTokens(ctx context.Context, period string, limit int) ([]domain.RawRecord, error) {
	recs, err := s.api.TokenRank(ctx, s.chain, period, "history_highest_market_cap", tokenRankFilters)
	if err != nil {
		return nil, fmt.Errorf("wallet_service: top tokens %s: %w", period, err)
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	out := make([]domain.RawRecord, 0, len(recs))
	for i, rec := range recs {
		r := rec.Clone()
		out = append(out, r)
		if i >= deployerLookupCap {
			continue
		}
		addr := normalize.ResolveString(r, normalize.TokenAddrKeys, "")
		if addr == "" || r["deployer"] != nil {
			continue
		}
		info, err := s.api.TokenInfo(ctx, s.chain, addr)
		if err != nil {
			s.logger.WarnContext(ctx, "wallet_service: token info lookup failed",
				slog.String("token", addr),
				slog.String("error", err.Error()),
			)
			continue
		}
		if dev, ok := info["dev"].(map[string]any); ok {
			if creator, ok := dev["creator_address"].(string); ok && creator != "" {
				r["deployer"] = creator
			}
		}
	}
	return out, nil
}

// KOLProfit resolves a free-text query (a KOL handle or partial address) to a
// wallet via search, then returns that wallet's profit summary. The first
// matching wallet on the configured chain wins.
func (s *WalletService) KOLProfit(ctx context.Context, query, period string) (domain.RawRecord, error) {
	recs, err := s.api.Search(ctx, s.chain, query)
	if err != nil {
		return nil, fmt.Errorf("wallet_service: kol profit %q: %w", query, err)
	}

	for _, rec := range recs {
		addr := normalize.ResolveString(rec, normalize.ActorKeys, "")
		if !common.IsHexAddress(addr) {
			continue
		}
		if chain, ok := rec["chain"].(string); ok && chain != "" && chain != s.chain {
			continue
		}
		profit, err := s.WalletProfit(ctx, addr, period)
		if err != nil {
			return nil, err
		}
		if name, ok := rec["name"].(string); ok && name != "" {
			profit["kol_name"] = name
		}
		return profit, nil
	}
	return nil, fmt.Errorf("wallet_service: kol profit %q: %w", query, domain.ErrNoData)
}

// Search resolves a free-text query to matching tokens and wallets.
func (s *WalletService) Search(ctx context.Context, query string) ([]domain.RawRecord, error) {
	recs, err := s.api.Search(ctx, s.chain, query)
	if err != nil {
		return nil, fmt.Errorf("wallet_service: search %q: %w", query, err)
	}
	return recs, nil
}

// annotate caps the list and writes the canonical derived fields every
// leaderboard consumer expects.
func annotate(recs []domain.RawRecord, period string, limit int) []domain.RawRecord {
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]domain.RawRecord, 0, len(recs))
	for _, rec := range recs {
		r := rec.Clone()
		pct, _ := normalize.ToPercentage(normalize.Resolve(r, normalize.PeriodKeys("winrate", period), nil))
		r["winrate_pct"] = pct
		r["pnl"] = normalize.ResolveFloat(r, normalize.PeriodKeys("pnl", period), 0)
		r["realized_profit"] = normalize.ResolveFloat(r, normalize.PeriodKeys("realized_profit", period), 0)
		out = append(out, r)
	}
	return out
}
