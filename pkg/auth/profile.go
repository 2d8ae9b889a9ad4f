package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
)

// baseGameEntitlement marks a profile that owns the base game. Profile
// selection prefers it over mere account linkage.
const baseGameEntitlement = "game.base"

// ResolvePrimaryProfile maps the premium access token to the
// launcher-visible identity. The cached profile is authoritative until a
// caller forces a network re-resolution, which also replaces the cache.
func (c *Client) ResolvePrimaryProfile(ctx context.Context, forceNetwork bool) (*types.Profile, error) {
	if !forceNetwork {
		if p := c.cachedProfile(); p != nil {
			return p, nil
		}
	}

	accessToken, err := c.EnsureAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	osName, arch := launcherOSArch()
	endpoint := fmt.Sprintf("%s/my-account/get-launcher-data?arch=%s&os=%s",
		c.cfg.AccountDataBase, url.QueryEscape(arch), url.QueryEscape(osName))

	res, err := c.do(ctx, http.MethodGet, endpoint, nil, c.officialHeaders(accessToken), c.cfg.RequestTimeout, "get-launcher-data")
	if err != nil {
		return nil, err
	}
	if res.Status/100 != 2 {
		return nil, &ProviderError{Op: "get-launcher-data", Status: res.Status, Body: snippet(string(res.Body), 200)}
	}

	var parsed struct {
		Profiles []struct {
			Username     string   `json:"username"`
			UUID         string   `json:"uuid"`
			Entitlements []string `json:"entitlements"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal(res.Body, &parsed); err != nil {
		return nil, fmt.Errorf("get-launcher-data returned non-JSON response")
	}
	if len(parsed.Profiles) == 0 {
		return nil, ErrNoValidProfile
	}

	best := parsed.Profiles[0]
	for _, p := range parsed.Profiles {
		if slices.Contains(p.Entitlements, baseGameEntitlement) {
			best = p
			break
		}
	}

	username := strings.TrimSpace(best.Username)
	normalized, ok := normalizeUUID(best.UUID)
	if username == "" || !ok {
		return nil, ErrNoValidProfile
	}

	profile := &types.Profile{Username: username, UUID: normalized}
	c.storeProfile(profile)
	return profile, nil
}

// cachedProfile returns the profile cached alongside the credential
// bundle, or nil if absent or incomplete.
func (c *Client) cachedProfile() *types.Profile {
	file, ok := c.creds.Read()
	if !ok || file.Profile == nil {
		return nil
	}
	username := strings.TrimSpace(file.Profile.Username)
	id := strings.TrimSpace(file.Profile.UUID)
	if username == "" || id == "" {
		return nil
	}
	return &types.Profile{Username: username, UUID: id}
}

// storeProfile caches the resolved profile alongside the credential
// bundle, best-effort.
func (c *Client) storeProfile(p *types.Profile) {
	c.credMu.Lock()
	defer c.credMu.Unlock()
	file, ok := c.creds.Read()
	if !ok {
		return
	}
	file.Profile = p
	c.creds.Write(file)
}

// normalizeUUID validates the canonical 8-4-4-4-12 form and lowercases
// it. Other encodings the uuid package accepts (braced, urn, undashed)
// are rejected: store keys and provider payloads use the canonical form
// only.
func normalizeUUID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if len(s) != 36 {
		return "", false
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// launcherOSArch reports platform identifiers the way the official
// launcher spells them.
func launcherOSArch() (osName, arch string) {
	switch runtime.GOOS {
	case "windows":
		osName = "windows"
	case "darwin":
		osName = "macos"
	default:
		osName = "linux"
	}
	return osName, runtime.GOARCH
}
