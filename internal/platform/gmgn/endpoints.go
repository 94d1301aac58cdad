package gmgn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/normalize"
)

// TokenTrades returns the most recent trades of a token, newest first.
func (c *Client) TokenTrades(ctx context.Context, chain, token string, limit int) ([]domain.RawRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("maker", "")
	params.Set("revert", "true")

	path := fmt.Sprintf("/vas/api/v1/token_trades/%s/%s", url.PathEscape(chain), url.PathEscape(token))
	raw, err := c.doGet(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token trades %s/%s: %w", chain, token, err)
	}
	recs, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token trades %s/%s: %w", chain, token, err)
	}
	return recs, nil
}

// TokenTraders returns the ranked trader list of a token.
func (c *Client) TokenTraders(ctx context.Context, chain, token string, limit int, orderby, direction string) ([]domain.RawRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if orderby == "" {
		orderby = "profit"
	}
	if direction == "" {
		direction = "desc"
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("orderby", orderby)
	params.Set("direction", direction)

	path := fmt.Sprintf("/vas/api/v1/token_traders/%s/%s", url.PathEscape(chain), url.PathEscape(token))
	raw, err := c.doGet(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token traders %s/%s: %w", chain, token, err)
	}
	recs, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token traders %s/%s: %w", chain, token, err)
	}
	return recs, nil
}

// WalletHolding returns a wallet's position stats for one token.
func (c *Client) WalletHolding(ctx context.Context, chain, wallet, token string) (domain.RawRecord, error) {
	params := url.Values{}
	params.Set("token_address", token)

	path := fmt.Sprintf("/pf/api/v1/wallet/%s/%s/holding", url.PathEscape(chain), url.PathEscape(wallet))
	raw, err := c.doGet(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("gmgn: wallet holding %s: %w", wallet, err)
	}
	rec, err := normalize.NormalizeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: wallet holding %s: %w", wallet, err)
	}
	return rec, nil
}

// WalletProfitStat returns a wallet's aggregated PnL for a period ("1d",
// "7d", "30d", "all"). The "all" period is flaky upstream and falls back to
// "30d" when it errors.
func (c *Client) WalletProfitStat(ctx context.Context, chain, wallet, period string) (domain.RawRecord, error) {
	rec, err := c.profitStat(ctx, chain, wallet, period)
	if err != nil && period == "all" && !errors.Is(err, context.Canceled) {
		return c.profitStat(ctx, chain, wallet, "30d")
	}
	return rec, err
}

func (c *Client) profitStat(ctx context.Context, chain, wallet, period string) (domain.RawRecord, error) {
	path := fmt.Sprintf("/pf/api/v1/wallet/%s/%s/profit_stat/%s",
		url.PathEscape(chain), url.PathEscape(wallet), url.PathEscape(period))
	raw, err := c.doGet(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("gmgn: profit stat %s/%s: %w", wallet, period, err)
	}
	rec, err := normalize.NormalizeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: profit stat %s/%s: %w", wallet, period, err)
	}
	return rec, nil
}

// WalletHoldings returns every current position of a wallet.
func (c *Client) WalletHoldings(ctx context.Context, chain, wallet string) ([]domain.RawRecord, error) {
	path := fmt.Sprintf("/pf/api/v1/wallet/%s/%s/holdings", url.PathEscape(chain), url.PathEscape(wallet))
	raw, err := c.doGet(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("gmgn: wallet holdings %s: %w", wallet, err)
	}
	recs, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: wallet holdings %s: %w", wallet, err)
	}
	return recs, nil
}

// TokenInfo returns the metadata record of one token, including the
// dev.creator_address field used for deployer attribution.
func (c *Client) TokenInfo(ctx context.Context, chain, token string) (domain.RawRecord, error) {
	payload := map[string]any{
		"chain":     chain,
		"addresses": []string{token},
	}
	raw, err := c.doPost(ctx, "/api/v1/mutil_window_token_info", nil, payload)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token info %s: %w", token, err)
	}
	recs, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token info %s: %w", token, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("gmgn: token info %s: %w", token, domain.ErrNoData)
	}
	return recs[0], nil
}

// WalletRankQuery selects and orders the top-wallet leaderboard.
type WalletRankQuery struct {
	Period  string   // "1d", "7d", "30d"
	OrderBy string   // e.g. "pnl_7d", "txs"
	Tags    []string // e.g. "smart_degen", "pump_smart"
	MinTxs  int
	MaxTxs  int
}

// WalletRank returns the top-wallet leaderboard for a chain.
func (c *Client) WalletRank(ctx context.Context, chain string, q WalletRankQuery) ([]domain.RawRecord, error) {
	if q.Period == "" {
		q.Period = "7d"
	}
	params := url.Values{}
	if q.OrderBy != "" {
		params.Set("orderby", q.OrderBy)
		params.Set("direction", "desc")
	}
	for _, tag := range q.Tags {
		params.Add("tag", tag)
	}
	if q.MinTxs > 0 {
		params.Set("min_txs", strconv.Itoa(q.MinTxs))
	}
	if q.MaxTxs > 0 {
		params.Set("max_txs", strconv.Itoa(q.MaxTxs))
	}

	path := fmt.Sprintf("/defi/quotation/v1/rank/%s/wallets/%s", url.PathEscape(chain), url.PathEscape(q.Period))
	raw, err := c.doGet(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("gmgn: wallet rank %s/%s: %w", chain, q.Period, err)
	}
	recs, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: wallet rank %s/%s: %w", chain, q.Period, err)
	}
	return recs, nil
}

// TokenRank returns the trending-token leaderboard for a chain. filters are
// repeated filters[] values such as "not_honeypot", "verified", "renounced".
func (c *Client) TokenRank(ctx context.Context, chain, period, orderby string, filters []string) ([]domain.RawRecord, error) {
	if period == "" {
		period = "1h"
	}
	params := url.Values{}
	if orderby != "" {
		params.Set("orderby", orderby)
		params.Set("direction", "desc")
	}
	for _, f := range filters {
		params.Add("filters[]", f)
	}

	path := fmt.Sprintf("/api/v1/rank/%s/swaps/%s", url.PathEscape(chain), url.PathEscape(period))
	raw, err := c.doGet(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token rank %s/%s: %w", chain, period, err)
	}
	recs, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: token rank %s/%s: %w", chain, period, err)
	}
	return recs, nil
}

// Search looks up tokens and wallets by free-text query.
func (c *Client) Search(ctx context.Context, chain, query string) ([]domain.RawRecord, error) {
	params := url.Values{}
	params.Set("chain", chain)
	params.Set("q", query)

	raw, err := c.doGet(ctx, "/vas/api/v1/search_v3", params)
	if err != nil {
		return nil, fmt.Errorf("gmgn: search %q: %w", query, err)
	}
	recs, err := normalize.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("gmgn: search %q: %w", query, err)
	}
	return recs, nil
}
