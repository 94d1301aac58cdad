package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/chainpulse/walletlens/internal/domain"
)

// WalletService defines the methods that the wallet handler requires from the
// service layer.
type WalletService interface {
	TopWallets(ctx context.Context, period string, limit int) ([]domain.RawRecord, error)
	LowTxWallets(ctx context.Context, period string, minTxs, maxTxs, limit int) ([]domain.RawRecord, error)
	HighActivity(ctx context.Context, period string, limit int) ([]domain.RawRecord, error)
	HighVolume(ctx context.Context, period string, limit int) ([]domain.RawRecord, error)
	WalletProfit(ctx context.Context, wallet, period string) (domain.RawRecord, error)
	TopTokens(ctx context.Context, period string, limit int) ([]domain.RawRecord, error)
	KOLProfit(ctx context.Context, query, period string) (domain.RawRecord, error)
	Search(ctx context.Context, query string) ([]domain.RawRecord, error)
}

// WalletHandler serves wallet-centric analytics endpoints.
type WalletHandler struct {
	wallets WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a WalletHandler with the given service and logger.
func NewWalletHandler(wallets WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		wallets: wallets,
		logger:  logHandler(logger, "wallet"),
	}
}

// recordListResponse wraps ranking and search output.
type recordListResponse struct {
	Records []domain.RawRecord `json:"records"`
	Count   int                `json:"count"`
	Period  string             `json:"period,omitempty"`
}

// Rank returns a wallet leaderboard. The preset query parameter selects the
// ranking flavor: top (default), low_tx, high_activity, or high_volume.
// GET /api/wallets/rank?preset=top&period=7d&limit=50
func (h *WalletHandler) Rank(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r, "7d")
	limit := parseLimit(r, 50, 200)
	preset := r.URL.Query().Get("preset")
	if preset == "" {
		preset = "top"
	}

	var (
		recs []domain.RawRecord
		err  error
	)
	switch preset {
	case "top":
		recs, err = h.wallets.TopWallets(r.Context(), period, limit)
	case "low_tx":
		minTxs := queryInt(r, "min_txs", 1)
		maxTxs := queryInt(r, "max_txs", 100)
		recs, err = h.wallets.LowTxWallets(r.Context(), period, minTxs, maxTxs, limit)
	case "high_activity":
		recs, err = h.wallets.HighActivity(r.Context(), period, limit)
	case "high_volume":
		recs, err = h.wallets.HighVolume(r.Context(), period, limit)
	default:
		writeError(w, http.StatusBadRequest, "unknown preset: "+preset)
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: wallet rank failed",
			slog.String("preset", preset),
			slog.String("period", period),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordListResponse{
		Records: recs,
		Count:   len(recs),
		Period:  period,
	})
}

// Profit returns the profit summary for one wallet.
// GET /api/wallets/{address}/profit?period=7d
func (h *WalletHandler) Profit(w http.ResponseWriter, r *http.Request) {
	wallet := pathParam(r, "address")
	period := parsePeriod(r, "7d")

	rec, err := h.wallets.WalletProfit(r.Context(), wallet, period)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: wallet profit failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// KOLProfit resolves a KOL handle or partial address and returns the matched
// wallet's profit summary.
// GET /api/kols/profit?q=degenking&period=7d
func (h *WalletHandler) KOLProfit(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	period := parsePeriod(r, "7d")

	rec, err := h.wallets.KOLProfit(r.Context(), query, period)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: kol profit failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// TokenRank returns the trending-token leaderboard.
// GET /api/tokens/rank?period=24h&limit=50
func (h *WalletHandler) TokenRank(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r, "24h")
	limit := parseLimit(r, 50, 200)

	recs, err := h.wallets.TopTokens(r.Context(), period, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: token rank failed",
			slog.String("period", period),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordListResponse{
		Records: recs,
		Count:   len(recs),
		Period:  period,
	})
}

// Search looks up tokens and wallets by free-text query.
// GET /api/search?q=pepe
func (h *WalletHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	recs, err := h.wallets.Search(r.Context(), query)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordListResponse{
		Records: recs,
		Count:   len(recs),
	})
}

// queryInt extracts an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
