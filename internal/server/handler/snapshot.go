package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chainpulse/walletlens/internal/domain"
)

// SnapshotService defines the snapshot reads the handler requires from the
// background refresh service.
type SnapshotService interface {
	LatestWalletRank(ctx context.Context, period string) ([]domain.RawRecord, time.Time, error)
	LatestTokenRank(ctx context.Context, period string) ([]domain.RawRecord, time.Time, error)
}

// SnapshotHandler serves the most recent persisted leaderboard snapshots.
// Unlike the live rank endpoints, these never touch the upstream API.
type SnapshotHandler struct {
	snapshots SnapshotService
	logger    *slog.Logger
}

// NewSnapshotHandler creates a SnapshotHandler with the given service and logger.
func NewSnapshotHandler(snapshots SnapshotService, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		snapshots: snapshots,
		logger:    logHandler(logger, "snapshot"),
	}
}

// snapshotResponse wraps a persisted leaderboard with its capture time.
type snapshotResponse struct {
	Records    []domain.RawRecord `json:"records"`
	Count      int                `json:"count"`
	Period     string             `json:"period"`
	CapturedAt time.Time          `json:"captured_at"`
}

// LatestWallets returns the most recent wallet leaderboard snapshot.
// GET /api/snapshots/wallets?period=7d
func (h *SnapshotHandler) LatestWallets(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "wallet snapshot", parsePeriod(r, "7d"), h.snapshots.LatestWalletRank)
}

// LatestTokens returns the most recent token leaderboard snapshot.
// GET /api/snapshots/tokens?period=24h
func (h *SnapshotHandler) LatestTokens(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "token snapshot", parsePeriod(r, "24h"), h.snapshots.LatestTokenRank)
}

func (h *SnapshotHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	what, period string,
	fetch func(context.Context, string) ([]domain.RawRecord, time.Time, error),
) {
	recs, capturedAt, err := fetch(r.Context(), period)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: "+what+" failed",
			slog.String("period", period),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Records:    recs,
		Count:      len(recs),
		Period:     period,
		CapturedAt: capturedAt,
	})
}
