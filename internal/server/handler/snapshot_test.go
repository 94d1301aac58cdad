package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/walletlens/internal/domain"
)

type fakeSnapshotService struct {
	records    []domain.RawRecord
	capturedAt time.Time
	err        error

	lastKind   string
	lastPeriod string
}

func (f *fakeSnapshotService) LatestWalletRank(ctx context.Context, period string) ([]domain.RawRecord, time.Time, error) {
	f.lastKind, f.lastPeriod = "wallet_rank", period
	return f.records, f.capturedAt, f.err
}

func (f *fakeSnapshotService) LatestTokenRank(ctx context.Context, period string) ([]domain.RawRecord, time.Time, error) {
	f.lastKind, f.lastPeriod = "token_rank", period
	return f.records, f.capturedAt, f.err
}

func serveSnapshot(t *testing.T, svc *fakeSnapshotService, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewSnapshotHandler(svc, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/snapshots/wallets", h.LatestWallets)
	mux.HandleFunc("GET /api/snapshots/tokens", h.LatestTokens)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestLatestWalletsReturnsSnapshot(t *testing.T) {
	capturedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeSnapshotService{
		records:    []domain.RawRecord{{"address": "0xaaa"}, {"address": "0xbbb"}},
		capturedAt: capturedAt,
	}

	rec := serveSnapshot(t, svc, "/api/snapshots/wallets?period=30d")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wallet_rank", svc.lastKind)
	assert.Equal(t, "30d", svc.lastPeriod)

	var body struct {
		Count      int       `json:"count"`
		Period     string    `json:"period"`
		CapturedAt time.Time `json:"captured_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "30d", body.Period)
	assert.True(t, body.CapturedAt.Equal(capturedAt))
}

func TestLatestTokensDefaultPeriod(t *testing.T) {
	svc := &fakeSnapshotService{}
	rec := serveSnapshot(t, svc, "/api/snapshots/tokens")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token_rank", svc.lastKind)
	assert.Equal(t, "24h", svc.lastPeriod)
}

func TestLatestWalletsNoSnapshotYet(t *testing.T) {
	svc := &fakeSnapshotService{err: domain.ErrNotFound}
	rec := serveSnapshot(t, svc, "/api/snapshots/wallets")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
