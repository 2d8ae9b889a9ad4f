package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
)

// FetchAuthTokens logs a community account in with the fallback auth
// provider, exchanging username and uuid for identity/session tokens.
//
// Errors are written to be shown to the player directly: timeouts name
// the elapsed budget, provider rejections carry the status and a response
// snippet.
func (c *Client) FetchAuthTokens(ctx context.Context, username, id string) (*types.AuthTokens, error) {
	client := c.httpClient
	if c.cfg.AuthInsecure {
		c.log.Warn().Msg("BUTTER_AUTH_INSECURE enabled: TLS certificate verification is disabled for auth requests")
		client = c.insecureHTTPClient()
	}

	payload, err := json.Marshal(map[string]string{"username": username, "uuid": id})
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")

	res, err := c.doClient(ctx, client, http.MethodPost, c.cfg.AuthURL, payload, h, c.cfg.AuthTimeout, "auth login")
	if err != nil {
		return nil, err
	}

	if res.Status != http.StatusOK {
		sn := snippet(string(res.Body), 400)
		if sn != "" {
			return nil, fmt.Errorf("auth server error (%d). Response: %s", res.Status, sn)
		}
		return nil, fmt.Errorf("auth server error (%d)", res.Status)
	}

	var parsed types.AuthTokens
	if err := json.Unmarshal(res.Body, &parsed); err != nil {
		sn := snippet(string(res.Body), 400)
		if sn != "" {
			return nil, fmt.Errorf("auth server did not return valid JSON. Response: %s", sn)
		}
		return nil, fmt.Errorf("auth server did not return valid JSON")
	}

	parsed.IdentityToken = strings.TrimSpace(parsed.IdentityToken)
	parsed.SessionToken = strings.TrimSpace(parsed.SessionToken)
	if parsed.IdentityToken == "" || parsed.SessionToken == "" {
		return nil, fmt.Errorf("auth server JSON missing identityToken/sessionToken")
	}
	return &parsed, nil
}
