package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/skratchdot/open-golang/open"
	"golang.org/x/oauth2"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
	"github.com/Astinix/Butter-Launcher/pkg/config"
)

// DeviceAuthPrompt is called once the provider has issued a device code,
// with the code the player must confirm and the URL to do it at.
type DeviceAuthPrompt func(userCode, verificationURL string)

// Login obtains the premium credential bundle through the provider's
// OAuth device-authorization flow and persists it. With openBrowser set
// the verification URL is opened locally; prompt is always called first
// so the caller can show the user code.
//
// Polling honors the provider's interval and the authorization_pending /
// slow_down protocol via the oauth2 package.
func (c *Client) Login(ctx context.Context, openBrowser bool, prompt DeviceAuthPrompt) error {
	conf := &oauth2.Config{
		ClientID: config.OAuthClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:      c.cfg.OAuthTokenURL,
			DeviceAuthURL: c.cfg.OAuthDeviceAuthURL,
			// Empty secret over Basic auth, matching the official
			// launcher's public client.
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.loginHTTPClient())

	deviceAuth, err := conf.DeviceAuth(ctx)
	if err != nil {
		return fmt.Errorf("device authorization failed: %w", err)
	}

	verificationURL := deviceAuth.VerificationURIComplete
	if verificationURL == "" {
		verificationURL = deviceAuth.VerificationURI
	}
	if prompt != nil {
		prompt(deviceAuth.UserCode, verificationURL)
	}
	if openBrowser {
		if err := open.Run(verificationURL); err != nil {
			c.log.Warn().Err(err).Msg("could not open browser, continue at the verification URL manually")
		}
	}

	token, err := conf.DeviceAccessToken(ctx, deviceAuth)
	if err != nil {
		return fmt.Errorf("device authorization failed: %w", err)
	}

	c.storeLoginToken(token)
	return nil
}

// Logout discards the premium credential bundle and its cached profile.
func (c *Client) Logout() {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	c.creds.Delete()
}

// storeLoginToken persists a freshly obtained bundle. Any previous bundle
// is replaced wholesale: a new login invalidates everything cached from
// the old one, including the profile.
func (c *Client) storeLoginToken(token *oauth2.Token) {
	obtainedAt := time.Now().Unix()
	bundle := map[string]any{
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
		"obtained_at":   obtainedAt,
	}
	if token.TokenType != "" {
		bundle["token_type"] = token.TokenType
	}
	if !token.Expiry.IsZero() {
		expiresAt := token.Expiry.Unix()
		bundle["expires_at"] = expiresAt
		if expiresAt > obtainedAt {
			bundle["expires_in"] = expiresAt - obtainedAt
		}
	}

	c.credMu.Lock()
	defer c.credMu.Unlock()
	c.creds.Write(types.CredentialFile{
		Token:      bundle,
		ObtainedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// loginHTTPClient injects the launcher identification headers into the
// oauth2 package's requests.
func (c *Client) loginHTTPClient() *http.Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &launcherHeaderTransport{base: base, cfg: c.cfg},
		Timeout:   c.cfg.RequestTimeout,
	}
}

// launcherHeaderTransport adds the official-client header set to every
// outgoing request.
type launcherHeaderTransport struct {
	base http.RoundTripper
	cfg  *config.Config
}

func (t *launcherHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.cfg.UserAgent)
	if t.cfg.LauncherBranch != "" {
		clone.Header.Set("X-Hytale-Launcher-Branch", t.cfg.LauncherBranch)
	}
	if t.cfg.LauncherVersion != "" {
		clone.Header.Set("X-Hytale-Launcher-Version", t.cfg.LauncherVersion)
	}
	return t.base.RoundTrip(clone)
}
