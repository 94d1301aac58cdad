// Package gmgn is the REST client for the GMGN wallet-analytics API. The API
// is undocumented and fronted by bot protection: it requires browser-shaped
// headers plus a session cookie, answers auth failures with redirects instead
// of status codes, and wraps payloads in inconsistent envelopes.
package gmgn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/chainpulse/walletlens/internal/domain"
)

const (
	defaultBaseURL   = "https://gmgn.ai"
	clientID         = "gmgn_web_20251203-8272-425773e"
	appVersion       = "20251203-8272-425773e"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// rateKey is the shared limiter bucket for every upstream call.
	rateKey = "gmgn:api"
)

// Client talks to the GMGN API. A zero rate limiter or archiver disables
// that behavior.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cookie     string
	userAgent  string

	// per-session browser identity, generated once at construction
	deviceID string
	fpDid    string

	limiter   domain.RateLimiter
	archiver  domain.EnvelopeArchiver
	rateLimit int
	rateWin   time.Duration
}

// NewClient creates a GMGN API client. cookie is the raw Cookie header value
// of an authenticated browser session; an empty cookie still works for the
// public endpoints until the bot protection rotates.
func NewClient(baseURL, cookie string, limiter domain.RateLimiter, archiver domain.EnvelopeArchiver) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Auth rejections arrive as redirects to the login page;
			// following them would hide the failure behind an HTML 200.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cookie:    cookie,
		userAgent: defaultUserAgent,
		deviceID:  uuid.NewString(),
		fpDid:     uuid.NewString(),
		limiter:   limiter,
		archiver:  archiver,
		rateLimit: 30,
		rateWin:   time.Minute,
	}
}

// SetRateLimit overrides the default per-window call allowance.
func (c *Client) SetRateLimit(limit int, window time.Duration) {
	c.rateLimit = limit
	c.rateWin = window
}

// baseParams are the query parameters every endpoint expects; requests
// without them get served degraded or empty payloads.
func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("device_id", c.deviceID)
	params.Set("fp_did", c.fpDid)
	params.Set("client_id", clientID)
	params.Set("app_ver", appVersion)
	params.Set("tz_name", "UTC")
	params.Set("tz_offset", "0")
	params.Set("app_lang", "en-US")
	params.Set("os", "web")
	params.Set("worker", "0")
	return params
}

// doGet performs a GET against path with the merged query parameters and
// returns the decoded envelope.
func (c *Client) doGet(ctx context.Context, path string, params url.Values) (any, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// doPost performs a JSON POST against path.
func (c *Client) doPost(ctx context.Context, path string, params url.Values, payload any) (any, error) {
	return c.do(ctx, http.MethodPost, path, params, payload)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload any) (any, error) {
	if c.limiter != nil {
		allowed, err := c.limiter.Allow(ctx, rateKey, c.rateLimit, c.rateWin)
		if err == nil && !allowed {
			if err := c.limiter.Wait(ctx, rateKey); err != nil {
				return nil, fmt.Errorf("gmgn: rate limit wait: %w", err)
			}
		}
	}

	merged := c.baseParams()
	for k, vs := range params {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("gmgn: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+merged.Encode(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("gmgn: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL+"/")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Kind: domain.KindNetwork, Message: "read response: " + err.Error()}
	}

	if c.archiver != nil {
		// best effort; archival failures never fail the request
		_ = c.archiver.Archive(ctx, path, merged.Get("device_id"), body)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			Kind:       domain.KindUpstream,
			Message:    http.StatusText(resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			Preview:    preview(body),
		}
	}

	return decodeBody(body)
}
