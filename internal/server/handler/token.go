package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chainpulse/walletlens/internal/domain"
	"github.com/chainpulse/walletlens/internal/normalize"
)

// TokenService defines the methods that the token handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type TokenService interface {
	FirstBuyers(ctx context.Context, token string) (domain.FirstBuyReport, error)
	HoldTime(ctx context.Context, token string) (domain.HoldTimeReport, error)
	TopTraders(ctx context.Context, token string, limit int) ([]domain.EnrichedWalletRecord, error)
}

// TokenHandler serves token-centric analytics endpoints.
type TokenHandler struct {
	tokens TokenService
	logger *slog.Logger
}

// NewTokenHandler creates a TokenHandler with the given service and logger.
func NewTokenHandler(tokens TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
		logger: logHandler(logger, "token"),
	}
}

// tokenMetadataResponse is the JSON shape of a reconciled token header.
type tokenMetadataResponse struct {
	Address      string  `json:"address"`
	Name         string  `json:"name,omitempty"`
	Symbol       string  `json:"symbol,omitempty"`
	Deployer     string  `json:"deployer,omitempty"`
	CreatedAt    float64 `json:"created_at,omitempty"`
	DeployTxHash string  `json:"deploy_tx_hash,omitempty"`
}

func toTokenMetadata(m domain.TokenMetadata) tokenMetadataResponse {
	return tokenMetadataResponse{
		Address:      m.Address,
		Name:         m.Name,
		Symbol:       m.Symbol,
		Deployer:     m.Deployer,
		CreatedAt:    m.CreatedAt,
		DeployTxHash: m.DeployTxHash,
	}
}

// enrichedWalletResponse is one wallet row with its merged supplement fields.
type enrichedWalletResponse struct {
	Address  string           `json:"address"`
	Enriched bool             `json:"enriched"`
	Record   domain.RawRecord `json:"record"`
}

func toEnrichedWallets(entries []domain.EnrichedWalletRecord) []enrichedWalletResponse {
	out := make([]enrichedWalletResponse, len(entries))
	for i, e := range entries {
		out[i] = enrichedWalletResponse{
			Address:  e.Address,
			Enriched: e.Enriched,
			Record:   e.Record,
		}
	}
	return out
}

// firstBuyersResponse wraps the first-buyers endpoint output.
type firstBuyersResponse struct {
	Token   tokenMetadataResponse    `json:"token"`
	Buyers  []enrichedWalletResponse `json:"buyers"`
	Count   int                      `json:"count"`
}

// FirstBuyers returns the earliest organic buyers of a token, enriched with
// their per-token holding history.
// GET /api/tokens/{address}/first-buyers
func (h *TokenHandler) FirstBuyers(w http.ResponseWriter, r *http.Request) {
	token := pathParam(r, "address")

	report, err := h.tokens.FirstBuyers(r.Context(), token)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: first buyers failed",
			slog.String("token", token),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	buyers := toEnrichedWallets(report.Entries)
	writeJSON(w, http.StatusOK, firstBuyersResponse{
		Token:  toTokenMetadata(report.Token),
		Buyers: buyers,
		Count:  len(buyers),
	})
}

// holdTimeResponse wraps the hold-time endpoint output. Formatted fields
// carry the human-readable rendering of the raw second counts.
type holdTimeResponse struct {
	Token         tokenMetadataResponse `json:"token"`
	ShortestHold  float64               `json:"shortest_hold_seconds"`
	LongestHold   float64               `json:"longest_hold_seconds"`
	MeanHold      float64               `json:"mean_hold_seconds"`
	MeanHoldHuman string                `json:"mean_hold"`
	TotalBuys     int                   `json:"total_buys"`
	TotalSells    int                   `json:"total_sells"`
	LastActive    float64               `json:"last_active"`
	Intervals     int                   `json:"intervals"`
	SkippedTrades int                   `json:"skipped_trades,omitempty"`
	AllExcluded   bool                  `json:"all_excluded"`
}

// HoldTime returns holding-duration statistics for a token's organic traders.
// GET /api/tokens/{address}/hold-time
func (h *TokenHandler) HoldTime(w http.ResponseWriter, r *http.Request) {
	token := pathParam(r, "address")

	report, err := h.tokens.HoldTime(r.Context(), token)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: hold time failed",
			slog.String("token", token),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	act := report.Activity
	writeJSON(w, http.StatusOK, holdTimeResponse{
		Token:         toTokenMetadata(report.Token),
		ShortestHold:  act.Stats.ShortestHold,
		LongestHold:   act.Stats.LongestHold,
		MeanHold:      act.Stats.MeanHold,
		MeanHoldHuman: normalize.FormatDuration(act.Stats.MeanHold),
		TotalBuys:     act.Stats.TotalBuys,
		TotalSells:    act.Stats.TotalSells,
		LastActive:    act.Stats.LastActive,
		Intervals:     len(act.Intervals),
		SkippedTrades: act.SkippedTrades,
		AllExcluded:   act.AllExcluded,
	})
}

// topTradersResponse wraps the traders endpoint output.
type topTradersResponse struct {
	Traders []enrichedWalletResponse `json:"traders"`
	Count   int                      `json:"count"`
}

// TopTraders returns the most profitable traders of a token.
// GET /api/tokens/{address}/traders?limit=50
func (h *TokenHandler) TopTraders(w http.ResponseWriter, r *http.Request) {
	token := pathParam(r, "address")
	limit := parseLimit(r, 50, 200)

	traders, err := h.tokens.TopTraders(r.Context(), token, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: top traders failed",
			slog.String("token", token),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	rows := toEnrichedWallets(traders)
	writeJSON(w, http.StatusOK, topTradersResponse{
		Traders: rows,
		Count:   len(rows),
	})
}
