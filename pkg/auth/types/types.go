// Package types defines the data model shared by the auth engine and its
// storage backends.
package types

import (
	"encoding/json"
	"strings"
)

// AccountType distinguishes premium (first-party) accounts from community
// accounts authenticated by the fallback provider.
type AccountType string

const (
	// AccountPremium is a first-party account with an OAuth credential bundle.
	AccountPremium AccountType = "premium"
	// AccountNoPremium is a community account handled by the fallback
	// auth provider.
	AccountNoPremium AccountType = "nopremium"
)

// Profile is the launcher-visible identity of a player.
type Profile struct {
	Username string `json:"username"`
	UUID     string `json:"uuid"`
}

// AuthTokens are the short-lived game-session tokens. They are never
// persisted; a fresh pair is negotiated per launch attempt.
type AuthTokens struct {
	IdentityToken string `json:"identityToken"`
	SessionToken  string `json:"sessionToken"`
}

// LaunchAuth bundles a resolved profile with its session tokens.
type LaunchAuth struct {
	Username      string `json:"username"`
	UUID          string `json:"uuid"`
	IdentityToken string `json:"identityToken"`
	SessionToken  string `json:"sessionToken"`
}

// Jwks is one issuer's signing-key set as served from
// {issuer}/.well-known/jwks.json. Keys stay raw JSON: the launcher caches
// them for the game client, it does not interpret them.
type Jwks struct {
	Keys []json.RawMessage `json:"keys"`
}

// OfflineTokens is the persisted offline-token store. UUID keys are
// always lowercased before lookup or storage.
type OfflineTokens struct {
	UpdatedAt string `json:"updatedAt,omitempty"`
	// TokensByIssuer maps issuer base URL to a uuid-to-token map.
	TokensByIssuer map[string]map[string]string `json:"tokensByIssuer,omitempty"`
	// Tokens is the legacy issuer-less map. It is kept as a best-effort
	// compatibility mirror so older launcher builds keep working.
	Tokens map[string]string `json:"tokens,omitempty"`
}

// CredentialFile mirrors the premium credential file on disk. Token holds
// the raw OAuth response fields so that provider metadata the launcher
// does not understand survives a refresh unchanged.
type CredentialFile struct {
	Token      map[string]any `json:"token"`
	Profile    *Profile       `json:"profile,omitempty"`
	ObtainedAt string         `json:"obtainedAt,omitempty"`
}

// AccessToken returns the bundle's access token, or "" if absent.
func (c *CredentialFile) AccessToken() string {
	return c.tokenString("access_token")
}

// RefreshToken returns the bundle's refresh token, or "" if absent.
func (c *CredentialFile) RefreshToken() string {
	return c.tokenString("refresh_token")
}

// ExpiresAt returns the access token's expiry as epoch seconds. When the
// provider did not send an explicit expires_at it is derived from
// obtained_at + expires_in. The second return is false when neither form
// is available.
func (c *CredentialFile) ExpiresAt() (int64, bool) {
	if v, ok := c.tokenNumber("expires_at"); ok {
		return v, true
	}
	obtained, ok := c.tokenNumber("obtained_at")
	if !ok {
		return 0, false
	}
	expiresIn, ok := c.tokenNumber("expires_in")
	if !ok {
		return 0, false
	}
	return obtained + expiresIn, true
}

func (c *CredentialFile) tokenString(key string) string {
	if c == nil || c.Token == nil {
		return ""
	}
	s, _ := c.Token[key].(string)
	return strings.TrimSpace(s)
}

func (c *CredentialFile) tokenNumber(key string) (int64, bool) {
	if c == nil || c.Token == nil {
		return 0, false
	}
	switch v := c.Token[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
