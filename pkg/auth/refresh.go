package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
	"github.com/Astinix/Butter-Launcher/pkg/config"
)

const (
	// refreshSkew is subtracted from the expiry instant before a cached
	// access token is trusted, so an in-flight request cannot race the
	// token's expiry.
	refreshSkew = 90 * time.Second

	// defaultExpiresIn applies when the token endpoint omits expires_in.
	defaultExpiresIn = 3600
)

// EnsureAccessToken returns a premium access token expected to outlive
// the next request. A token more than refreshSkew away from expiry is
// returned without any network call; otherwise the OAuth refresh grant
// runs and the bundle is re-persisted.
//
// A failed or unreachable refresh degrades to the previous access token
// when one exists — a transient network blip must never prevent trying a
// possibly-still-valid cached token. ErrLoginRequired is returned only
// when no credential bundle or no token at all is available.
func (c *Client) EnsureAccessToken(ctx context.Context) (string, error) {
	c.credMu.Lock()
	defer c.credMu.Unlock()

	file, ok := c.creds.Read()
	if !ok || len(file.Token) == 0 {
		return "", ErrLoginRequired
	}

	access := file.AccessToken()
	refresh := file.RefreshToken()
	if refresh == "" {
		// Nothing to refresh with; hand back whatever we have.
		if access == "" {
			return "", ErrLoginRequired
		}
		return access, nil
	}

	if access != "" {
		if expiresAt, known := file.ExpiresAt(); known &&
			time.Unix(expiresAt, 0).Add(-refreshSkew).After(time.Now()) {
			return access, nil
		}
	}

	next, err := c.refreshAccessToken(ctx, &file, refresh)
	if err != nil {
		c.log.Warn().Err(err).Msg("premium token refresh failed, keeping cached token")
		if access == "" {
			return "", ErrLoginRequired
		}
		return access, nil
	}
	return next, nil
}

// refreshAccessToken performs the refresh grant and persists the merged
// bundle. New response fields are merged over the old token object so
// provider metadata the launcher does not understand is never dropped.
// Callers hold credMu.
func (c *Client) refreshAccessToken(ctx context.Context, file *types.CredentialFile, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	h := http.Header{}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("Accept", "application/json")
	h.Set("User-Agent", c.cfg.UserAgent)
	// The token endpoint authenticates the public client via Basic auth
	// with an empty secret, matching the official launcher.
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(config.OAuthClientID+":")))
	if c.cfg.LauncherBranch != "" {
		h.Set("X-Hytale-Launcher-Branch", c.cfg.LauncherBranch)
	}
	if c.cfg.LauncherVersion != "" {
		h.Set("X-Hytale-Launcher-Version", c.cfg.LauncherVersion)
	}

	res, err := c.do(ctx, http.MethodPost, c.cfg.OAuthTokenURL, []byte(form.Encode()), h, c.cfg.RequestTimeout, "refresh_token")
	if err != nil {
		return "", err
	}
	if res.Status/100 != 2 {
		return "", &ProviderError{Op: "refresh_token", Status: res.Status, Body: snippet(string(res.Body), 800)}
	}

	var fresh map[string]any
	if err := json.Unmarshal(res.Body, &fresh); err != nil {
		return "", fmt.Errorf("token endpoint returned non-JSON response")
	}
	next, _ := fresh["access_token"].(string)
	next = strings.TrimSpace(next)
	if next == "" {
		return "", fmt.Errorf("token endpoint response missing access_token")
	}

	obtainedAt := time.Now().Unix()
	expiresIn := int64(defaultExpiresIn)
	if v, ok := fresh["expires_in"].(float64); ok && v >= 1 {
		expiresIn = int64(v)
	}

	merged := make(map[string]any, len(file.Token)+len(fresh))
	for k, v := range file.Token {
		merged[k] = v
	}
	for k, v := range fresh {
		merged[k] = v
	}
	merged["access_token"] = next
	if r, _ := fresh["refresh_token"].(string); strings.TrimSpace(r) != "" {
		merged["refresh_token"] = strings.TrimSpace(r)
	} else {
		merged["refresh_token"] = refreshToken
	}
	merged["obtained_at"] = obtainedAt
	merged["expires_in"] = expiresIn
	merged["expires_at"] = obtainedAt + expiresIn

	file.Token = merged
	file.ObtainedAt = time.Now().UTC().Format(time.RFC3339)
	c.creds.Write(*file)

	return next, nil
}
