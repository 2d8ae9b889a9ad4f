package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
)

// OfflineTokenRequest describes one offline-token lookup or issuance.
type OfflineTokenRequest struct {
	AccountType types.AccountType
	// Username is required for community accounts; premium issuance works
	// from the credential bundle alone.
	Username string
	UUID     string
	// Issuer selects which trust domain's token to return, by base URL.
	// Empty means community issuer first, then official, then the legacy
	// issuer-less map.
	Issuer string
	// ForceRefresh skips the store and always re-issues.
	ForceRefresh bool
}

// EnsureOfflineToken returns an offline token for the request's uuid,
// serving the persisted store when possible. A cached token whose exp
// claim has passed is treated as absent and re-issued.
func (c *Client) EnsureOfflineToken(ctx context.Context, req OfflineTokenRequest) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.UUID))
	if normalized == "" {
		return "", fmt.Errorf("missing uuid")
	}
	req.UUID = normalized

	if !req.ForceRefresh {
		if tok := c.StoredOfflineToken(normalized, req.Issuer); tok != "" && !offlineTokenExpired(tok) {
			return tok, nil
		}
	}
	return c.RefreshOfflineToken(ctx, req)
}

// RefreshOfflineToken issues a fresh offline token from the account's
// issuer and persists it per (issuer, uuid).
func (c *Client) RefreshOfflineToken(ctx context.Context, req OfflineTokenRequest) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.UUID))
	username := strings.TrimSpace(req.Username)
	if normalized == "" {
		return "", fmt.Errorf("missing uuid")
	}
	if username == "" && req.AccountType != types.AccountPremium {
		return "", fmt.Errorf("missing username")
	}

	if req.AccountType == types.AccountPremium {
		return c.refreshPremiumOfflineToken(ctx, normalized)
	}
	return c.refreshCommunityOfflineToken(ctx, username, normalized, strings.TrimSpace(req.Issuer))
}

// refreshPremiumOfflineToken asks the first-party issuer for an offline
// token, authenticated with the premium access token.
func (c *Client) refreshPremiumOfflineToken(ctx context.Context, normalizedUUID string) (string, error) {
	accessToken, err := c.EnsureAccessToken(ctx)
	if err != nil {
		return "", err
	}

	endpoint := c.cfg.OfficialSessionsBase + "/game-session/offline"
	h := c.officialHeaders(accessToken)
	h.Set("Content-Type", "application/json")
	body, err := json.Marshal(map[string]string{"uuid": normalizedUUID})
	if err != nil {
		return "", err
	}

	res, err := c.do(ctx, http.MethodPost, endpoint, body, h, c.cfg.RequestTimeout, "game-session/offline")
	if err != nil {
		return "", err
	}
	if res.Status != http.StatusOK {
		return "", &ProviderError{Op: "game-session/offline", Status: res.Status, Body: snippet(string(res.Body), 200)}
	}

	tok := offlineTokenFromResponse(res.Body, "offlineTokens", normalizedUUID)
	if tok == "" {
		return "", fmt.Errorf("game-session/offline returned missing offline token")
	}
	c.storeOfflineToken(normalizedUUID, c.cfg.OfficialSessionsBase, tok)
	return tok, nil
}

// refreshCommunityOfflineToken logs the community account in through the
// fallback provider, then asks the community issuer for offline tokens.
// The response may carry tokens for both namespaces at once; every token
// present is persisted under its issuer before the requested one is
// returned.
func (c *Client) refreshCommunityOfflineToken(ctx context.Context, username, normalizedUUID, wantIssuer string) (string, error) {
	tokens, err := c.FetchAuthTokens(ctx, username, normalizedUUID)
	if err != nil {
		return "", err
	}

	endpoint := c.cfg.CommunitySessionsBase + "/game-session/offline"
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+tokens.IdentityToken)
	body, err := json.Marshal(map[string]string{"uuid": normalizedUUID})
	if err != nil {
		return "", err
	}

	res, err := c.do(ctx, http.MethodPost, endpoint, body, h, c.cfg.RequestTimeout, "butter game-session/offline")
	if err != nil {
		return "", err
	}
	if res.Status != http.StatusOK {
		return "", &ProviderError{Op: "butter game-session/offline", Status: res.Status, Body: snippet(string(res.Body), 800)}
	}

	communityToken := offlineTokenFromResponse(res.Body, "offlineTokens", normalizedUUID)
	officialToken := offlineTokenFromResponse(res.Body, "offlineTokensOfficialIssuer", normalizedUUID)

	if communityToken != "" {
		c.storeOfflineToken(normalizedUUID, c.cfg.CommunitySessionsBase, communityToken)
	}
	if officialToken != "" {
		c.storeOfflineToken(normalizedUUID, c.cfg.OfficialSessionsBase, officialToken)
	}

	if wantIssuer == c.cfg.OfficialSessionsBase {
		if officialToken == "" {
			return "", fmt.Errorf("butter game-session/offline missing official-issuer offline token")
		}
		return officialToken, nil
	}
	if communityToken == "" {
		return "", fmt.Errorf("butter game-session/offline returned missing offline token")
	}
	return communityToken, nil
}

// StoredOfflineToken returns the persisted offline token for uuid, or
// "". With an empty issuer the lookup prefers the community issuer, then
// the official issuer, then the legacy issuer-less map.
func (c *Client) StoredOfflineToken(id, issuer string) string {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if normalized == "" {
		return ""
	}
	st, _ := c.offline.Read()

	if iss := strings.TrimSpace(issuer); iss != "" {
		return strings.TrimSpace(st.TokensByIssuer[iss][normalized])
	}

	for _, iss := range []string{c.cfg.CommunitySessionsBase, c.cfg.OfficialSessionsBase} {
		if tok := strings.TrimSpace(st.TokensByIssuer[iss][normalized]); tok != "" {
			return tok
		}
	}
	return strings.TrimSpace(st.Tokens[normalized])
}

// storeOfflineToken persists token under (issuer, uuid), mirroring it
// into the legacy map for older launcher builds. Entries are only ever
// overwritten, never deleted.
func (c *Client) storeOfflineToken(id, issuer, token string) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	iss := strings.TrimSpace(issuer)
	tok := strings.TrimSpace(token)
	if normalized == "" || iss == "" || tok == "" {
		return
	}

	st, _ := c.offline.Read()
	if st.TokensByIssuer == nil {
		st.TokensByIssuer = make(map[string]map[string]string)
	}
	if st.TokensByIssuer[iss] == nil {
		st.TokensByIssuer[iss] = make(map[string]string)
	}
	st.TokensByIssuer[iss][normalized] = tok

	if st.Tokens == nil {
		st.Tokens = make(map[string]string)
	}
	st.Tokens[normalized] = tok

	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	c.offline.Write(st)
}

// offlineTokenFromResponse extracts body.<field>[uuid] from an
// offline-session response.
func offlineTokenFromResponse(body []byte, field, normalizedUUID string) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	tokens, ok := parsed[field].(map[string]any)
	if !ok {
		return ""
	}
	tok, _ := tokens[normalizedUUID].(string)
	return strings.TrimSpace(tok)
}
