package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
)

func tokenFile(access, refresh string, extra map[string]any) types.CredentialFile {
	token := map[string]any{}
	if access != "" {
		token["access_token"] = access
	}
	if refresh != "" {
		token["refresh_token"] = refresh
	}
	for k, v := range extra {
		token[k] = v
	}
	return types.CredentialFile{Token: token}
}

func TestEnsureAccessToken_NoBundle(t *testing.T) {
	client := newTestClient(t, testConfig(t))

	_, err := client.EnsureAccessToken(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestEnsureAccessToken_FastPathInsideSkew(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("cached-access", "refresh-1", map[string]any{
		"expires_at": float64(time.Now().Unix() + 91),
	}))

	got, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-access", got)
	assert.Equal(t, int32(0), hits.Load(), "a token 91s from expiry must not hit the network")
}

func TestEnsureAccessToken_RefreshOutsideSkew(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("hytale-launcher:"))
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
		assert.Equal(t, "hytale-launcher/test-1", r.Header.Get("User-Agent"))
		assert.Equal(t, "release", r.Header.Get("X-Hytale-Launcher-Branch"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-access","refresh_token":"refresh-2","expires_in":7200}`))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("cached-access", "refresh-1", map[string]any{
		"expires_at": float64(time.Now().Unix() + 89),
	}))

	client := newTestClient(t, cfg)
	got, err := client.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", got)
	assert.Equal(t, int32(1), hits.Load(), "a token 89s from expiry refreshes exactly once")

	file := readCredentials(t, cfg)
	assert.Equal(t, "fresh-access", file.AccessToken())
	assert.Equal(t, "refresh-2", file.RefreshToken())
	expiresAt, ok := file.ExpiresAt()
	require.True(t, ok)
	assert.InDelta(t, time.Now().Unix()+7200, expiresAt, 5)

	// The refreshed bundle now satisfies the fast path.
	got, err = client.EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", got)
	assert.Equal(t, int32(1), hits.Load())
}

func TestEnsureAccessToken_DerivedExpiryFastPath(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("cached-access", "refresh-1", map[string]any{
		"obtained_at": float64(time.Now().Unix()),
		"expires_in":  float64(3600),
	}))

	got, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-access", got)
	assert.Equal(t, int32(0), hits.Load())
}

func TestEnsureAccessToken_MergeKeepsUnknownFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-access","scope":"launcher"}`))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("old-access", "refresh-1", map[string]any{
		"expires_at":  float64(time.Now().Unix() - 10),
		"vendor_data": "opaque-provider-metadata",
	}))

	got, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", got)

	file := readCredentials(t, cfg)
	assert.Equal(t, "opaque-provider-metadata", file.Token["vendor_data"], "unknown fields survive a refresh")
	assert.Equal(t, "launcher", file.Token["scope"])
	assert.Equal(t, "refresh-1", file.RefreshToken(), "refresh token kept when the response omits one")

	// Omitted expires_in defaults to 3600.
	expiresAt, ok := file.ExpiresAt()
	require.True(t, ok)
	assert.InDelta(t, time.Now().Unix()+3600, expiresAt, 5)
}

func TestEnsureAccessToken_RejectionDegradesToPreviousToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("stale-but-present", "refresh-1", map[string]any{
		"expires_at": float64(time.Now().Unix() - 10),
	}))

	got, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale-but-present", got)

	// The failed refresh must not touch the stored bundle.
	file := readCredentials(t, cfg)
	assert.Equal(t, "stale-but-present", file.AccessToken())
}

func TestEnsureAccessToken_NetworkFailureDegradesToPreviousToken(t *testing.T) {
	cfg := testConfig(t)
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	cfg.OAuthTokenURL = server.URL
	server.Close() // connection refused from here on

	seedCredentials(t, cfg, tokenFile("stale-but-present", "refresh-1", map[string]any{
		"expires_at": float64(time.Now().Unix() - 10),
	}))

	got, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale-but-present", got)
}

func TestEnsureAccessToken_RejectionWithoutPreviousToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("", "refresh-1", nil))

	_, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
}

func TestEnsureAccessToken_MissingAccessTokenInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("old-access", "refresh-1", map[string]any{
		"expires_at": float64(time.Now().Unix() - 10),
	}))

	got, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old-access", got)
}

func TestEnsureAccessToken_NoRefreshTokenReturnsAccessAsIs(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.OAuthTokenURL = server.URL
	seedCredentials(t, cfg, tokenFile("unrefreshable", "", map[string]any{
		"expires_at": float64(time.Now().Unix() - 1000), // long expired, still returned
	}))

	got, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "unrefreshable", got)
	assert.Equal(t, int32(0), hits.Load())
}

func TestEnsureAccessToken_NoRefreshTokenNoAccessToken(t *testing.T) {
	cfg := testConfig(t)
	seedCredentials(t, cfg, types.CredentialFile{Token: map[string]any{"token_type": "Bearer"}})

	_, err := newTestClient(t, cfg).EnsureAccessToken(context.Background())
	assert.ErrorIs(t, err, ErrLoginRequired)
}
