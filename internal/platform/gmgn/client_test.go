package gmgn

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/walletlens/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "session=abc123", nil, nil)
}

func TestClientSendsBrowserIdentity(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.TokenTrades(context.Background(), "bsc", "0xtoken", 50)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.NotEmpty(t, q.Get("device_id"))
	assert.NotEmpty(t, q.Get("fp_did"))
	assert.Equal(t, clientID, q.Get("client_id"))
	assert.Equal(t, "web", q.Get("os"))
	assert.Equal(t, "50", q.Get("limit"))
	assert.Equal(t, "true", q.Get("revert"))
	assert.Equal(t, "session=abc123", got.Header.Get("Cookie"))
	assert.Contains(t, got.Header.Get("User-Agent"), "Mozilla")
}

func TestClientStableDeviceIdentity(t *testing.T) {
	ids := map[string]bool{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids[r.URL.Query().Get("device_id")] = true
		w.Write([]byte(`[]`))
	})
	for i := 0; i < 3; i++ {
		_, err := c.Search(context.Background(), "bsc", "pepe")
		require.NoError(t, err)
	}
	assert.Len(t, ids, 1, "device_id must not rotate within a session")
}

func TestClientRedirectIsUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	_, err := c.TokenTrades(context.Background(), "bsc", "0xtoken", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusFound, ue.HTTPStatus)
}

func TestClientRateLimitedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.WalletHoldings(context.Background(), "bsc", "0xwallet")
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestClientParseErrorCarriesPreview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>cloudflare challenge</html>"))
	})
	_, err := c.Search(context.Background(), "bsc", "x")
	require.Error(t, err)

	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, domain.KindParse, ue.Kind)
	assert.Contains(t, ue.Preview, "cloudflare")
}

func TestClientGzipFallback(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(`{"data":{"rank":[{"wallet_address":"0xa"}]}}`))
	zw.Close()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// compressed body with no Content-Encoding header
		w.Write(buf.Bytes())
	})
	recs, err := c.WalletRank(context.Background(), "bsc", WalletRankQuery{Period: "7d"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "0xa", recs[0]["wallet_address"])
}

func TestProfitStatAllFallsBackTo30d(t *testing.T) {
	var periods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		period := path.Base(r.URL.Path)
		periods = append(periods, period)
		if period == "all" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data":{"realized_profit":100}}`))
	})

	rec, err := c.WalletProfitStat(context.Background(), "bsc", "0xw", "all")
	require.NoError(t, err)
	assert.Equal(t, []string{"all", "30d"}, periods)
	assert.Equal(t, 100.0, rec["realized_profit"])
}

func TestTokenInfoPostPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload struct {
			Chain     string   `json:"chain"`
			Addresses []string `json:"addresses"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "bsc", payload.Chain)
		assert.Equal(t, []string{"0xtoken"}, payload.Addresses)
		w.Write([]byte(`{"data":[{"symbol":"PEPE","dev":{"creator_address":"0xdev"}}]}`))
	})

	rec, err := c.TokenInfo(context.Background(), "bsc", "0xtoken")
	require.NoError(t, err)
	assert.Equal(t, "PEPE", rec["symbol"])
	assert.Equal(t, "0xdev", rec.Child("dev")["creator_address"])
}

func TestTokenInfoEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	_, err := c.TokenInfo(context.Background(), "bsc", "0xtoken")
	assert.True(t, errors.Is(err, domain.ErrNoData))
}

func TestWalletRankRepeatedTags(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, []string{"smart_degen", "pump_smart"}, q["tag"])
		assert.Equal(t, "pnl_7d", q.Get("orderby"))
		assert.Equal(t, "50", q.Get("min_txs"))
		w.Write([]byte(`{"data":{"rank":[]}}`))
	})
	_, err := c.WalletRank(context.Background(), "bsc", WalletRankQuery{
		Period:  "7d",
		OrderBy: "pnl_7d",
		Tags:    []string{"smart_degen", "pump_smart"},
		MinTxs:  50,
	})
	require.NoError(t, err)
}

func TestTokenRankFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"not_honeypot", "verified"}, r.URL.Query()["filters[]"])
		w.Write([]byte(`{"data":{"rank":[{"symbol":"X"}]}}`))
	})
	recs, err := c.TokenRank(context.Background(), "bsc", "1h", "history_highest_market_cap", []string{"not_honeypot", "verified"})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestClientUpstreamErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"invalid token address","status_code":400}`))
	})
	_, err := c.TokenTrades(context.Background(), "bsc", "junk", 10)
	require.Error(t, err)

	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "invalid token address", ue.Message)
}
