package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
)

// CreateGameSession exchanges the premium access token for the
// short-lived identity/session token pair bound to profileUUID.
func (c *Client) CreateGameSession(ctx context.Context, profileUUID string) (*types.AuthTokens, error) {
	accessToken, err := c.EnsureAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.cfg.OfficialSessionsBase + "/game-session/new"
	h := c.officialHeaders(accessToken)
	h.Set("Content-Type", "application/json")
	body, err := json.Marshal(map[string]string{"uuid": profileUUID})
	if err != nil {
		return nil, err
	}

	res, err := c.do(ctx, http.MethodPost, endpoint, body, h, c.cfg.RequestTimeout, "game-session/new")
	if err != nil {
		return nil, err
	}
	if res.Status/100 != 2 {
		return nil, &ProviderError{Op: "game-session/new", Status: res.Status, Body: snippet(string(res.Body), 200)}
	}

	var parsed types.AuthTokens
	if err := json.Unmarshal(res.Body, &parsed); err != nil {
		return nil, fmt.Errorf("game-session/new returned non-JSON response")
	}
	parsed.IdentityToken = strings.TrimSpace(parsed.IdentityToken)
	parsed.SessionToken = strings.TrimSpace(parsed.SessionToken)
	if parsed.IdentityToken == "" || parsed.SessionToken == "" {
		return nil, fmt.Errorf("game-session/new returned missing identityToken/sessionToken")
	}
	return &parsed, nil
}

// FetchLaunchAuth resolves the primary profile and negotiates session
// tokens for it.
//
// When the provider rejects the cached profile as no longer linked to the
// account (IsStaleProfile), the profile is re-resolved from the network
// and the exchange retried. The retry budget is exactly one attempt: a
// second failure propagates unchanged.
func (c *Client) FetchLaunchAuth(ctx context.Context) (*types.LaunchAuth, error) {
	profile, err := c.ResolvePrimaryProfile(ctx, false)
	if err != nil {
		return nil, err
	}

	tokens, err := c.CreateGameSession(ctx, profile.UUID)
	if err != nil {
		if !IsStaleProfile(err) {
			return nil, err
		}
		c.log.Info().Str("uuid", profile.UUID).Msg("cached profile rejected by provider, re-resolving")
		profile, err = c.ResolvePrimaryProfile(ctx, true)
		if err != nil {
			return nil, err
		}
		tokens, err = c.CreateGameSession(ctx, profile.UUID)
		if err != nil {
			return nil, err
		}
	}

	return &types.LaunchAuth{
		Username:      profile.Username,
		UUID:          profile.UUID,
		IdentityToken: tokens.IdentityToken,
		SessionToken:  tokens.SessionToken,
	}, nil
}
