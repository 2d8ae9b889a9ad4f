package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Astinix/Butter-Launcher/pkg/auth/store"
	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
	"github.com/Astinix/Butter-Launcher/pkg/config"
)

// Client implements the launcher's token and session lifecycle for both
// identity providers. It is safe for concurrent use.
type Client struct {
	cfg        *config.Config
	log        zerolog.Logger
	httpClient *http.Client

	// credMu serializes every read-check-write cycle on the credential
	// bundle. Without it two concurrent refreshes could both hit the
	// token endpoint and the slower write would discard the faster
	// refresh's tokens, risking refresh-token invalidation provider-side.
	credMu  sync.Mutex
	creds   *store.JSON[types.CredentialFile]
	offline *store.JSON[types.OfflineTokens]

	communityJwks *JwksCache
	officialJwks  *JwksCache

	insecureOnce   sync.Once
	insecureClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for provider requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithCredentialBlob replaces the credential bundle backend, e.g. with a
// keyring-backed store.
func WithCredentialBlob(b store.Blob) Option {
	return func(c *Client) { c.creds = store.NewJSON[types.CredentialFile](b) }
}

// WithOfflineTokenBlob replaces the offline-token store backend.
func WithOfflineTokenBlob(b store.Blob) Option {
	return func(c *Client) { c.offline = store.NewJSON[types.OfflineTokens](b) }
}

// New creates a Client with file-backed caches under cfg.MetaDir.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{},
		creds:      store.NewJSON[types.CredentialFile](store.NewFileBlob(cfg.CredentialPath())),
		offline:    store.NewJSON[types.OfflineTokens](store.NewFileBlob(cfg.OfflineTokensPath())),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.communityJwks = newJwksCache(c, "butter", cfg.CommunitySessionsBase,
		store.NewJSON[types.Jwks](store.NewFileBlob(cfg.JwksPath("butter"))))
	c.officialJwks = newJwksCache(c, "official", cfg.OfficialSessionsBase,
		store.NewJSON[types.Jwks](store.NewFileBlob(cfg.JwksPath("official"))))
	return c
}

// CommunityJwks is the community issuer's signing-key cache.
func (c *Client) CommunityJwks() *JwksCache { return c.communityJwks }

// OfficialJwks is the first-party issuer's signing-key cache.
func (c *Client) OfficialJwks() *JwksCache { return c.officialJwks }

// httpResult is a fully-read provider response.
type httpResult struct {
	Status int
	Body   []byte
}

// do performs one bounded provider request against the default client.
func (c *Client) do(ctx context.Context, method, rawurl string, body []byte, h http.Header, timeout time.Duration, op string) (*httpResult, error) {
	return c.doClient(ctx, c.httpClient, method, rawurl, body, h, timeout, op)
}

// doClient performs one provider request with an explicit timeout. The
// response body is read in full so the result can be logged and matched
// against provider error wording.
func (c *Client) doClient(ctx context.Context, client *http.Client, method, rawurl string, body []byte, h http.Header, timeout time.Duration, op string) (*httpResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
	if err != nil {
		return nil, err
	}
	for key, values := range h {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	c.log.Debug().
		Str("op", op).
		Str("method", method).
		Str("url", rawurl).
		Interface("headers", redactHeaders(req.Header)).
		Int("body_bytes", len(body)).
		Msg("provider request")

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Warn().Str("op", op).Dur("timeout", timeout).Msg("provider request timed out")
			return nil, fmt.Errorf("%s timed out after %s", op, timeout)
		}
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s response read failed: %w", op, err)
	}

	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Str("body", snippet(string(respBody), 1200)).
		Msg("provider response")

	return &httpResult{Status: resp.StatusCode, Body: respBody}, nil
}

// insecureHTTPClient is the TLS-verification-bypassing client used only
// for fallback auth when explicitly opted in.
func (c *Client) insecureHTTPClient() *http.Client {
	c.insecureOnce.Do(func() {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicit opt-in
		c.insecureClient = &http.Client{Transport: transport}
	})
	return c.insecureClient
}

// officialHeaders is the header set the official launcher sends. The
// providers reject requests without it.
func (c *Client) officialHeaders(accessToken string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", c.cfg.UserAgent)
	h.Set("Authorization", "Bearer "+accessToken)
	if c.cfg.LauncherBranch != "" {
		h.Set("X-Hytale-Launcher-Branch", c.cfg.LauncherBranch)
	}
	if c.cfg.LauncherVersion != "" {
		h.Set("X-Hytale-Launcher-Version", c.cfg.LauncherVersion)
	}
	return h
}

// redactHeaders copies h with Authorization values masked for logging.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		if http.CanonicalHeaderKey(key) == "Authorization" {
			out[key] = "<redacted>"
			continue
		}
		out[key] = values[0]
	}
	return out
}
