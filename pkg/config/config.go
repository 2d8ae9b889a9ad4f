// Package config resolves launcher configuration from the environment.
//
// Every parameter is optional and carries a default matching the official
// launcher's behavior. Environment variables use the BUTTER_ prefix, e.g.
// BUTTER_AUTH_URL or BUTTER_HTTP_DEBUG=1. Cache file paths derive from a
// single meta directory so tests can point the whole subsystem at a
// temporary directory without touching the environment.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Defaults mirroring the official launcher and the community fallback.
const (
	DefaultAuthURL               = "https://butter.lat/auth/login"
	DefaultOAuthTokenURL         = "https://oauth.accounts.hytale.com/oauth2/token"
	DefaultOAuthDeviceAuthURL    = "https://oauth.accounts.hytale.com/oauth2/auth/device"
	DefaultAccountDataBase       = "https://account-data.hytale.com"
	DefaultOfficialSessionsBase  = "https://sessions.hytale.com"
	DefaultCommunitySessionsBase = "https://sessions.butter.lat"
	DefaultUserAgent             = "hytale-launcher/2026.02.12-54e579b"
	DefaultLauncherBranch        = "release"

	// OAuthClientID is the official launcher's public OAuth client. The
	// token endpoint expects it as Basic auth with an empty secret; this
	// is a documented public-client flow, not a secret.
	OAuthClientID = "hytale-launcher"

	// DefaultAuthTimeout bounds fallback-auth requests.
	DefaultAuthTimeout = 5 * time.Second
	// DefaultRequestTimeout bounds every other outbound request.
	DefaultRequestTimeout = 8 * time.Second
)

// Config is the process-wide, read-only launcher configuration.
type Config struct {
	// AuthURL is the fallback auth provider's login endpoint.
	AuthURL string
	// AuthTimeout bounds fallback-auth requests.
	AuthTimeout time.Duration
	// AuthInsecure disables TLS verification for fallback-auth requests.
	// Opt-in only; a warning is logged whenever it is enabled.
	AuthInsecure bool

	// OAuthTokenURL is the premium provider's OAuth token endpoint.
	OAuthTokenURL string
	// OAuthDeviceAuthURL is the premium provider's device-authorization
	// endpoint used for first login.
	OAuthDeviceAuthURL string

	// AccountDataBase serves launcher profile data.
	AccountDataBase string
	// OfficialSessionsBase is the first-party session issuer.
	OfficialSessionsBase string
	// CommunitySessionsBase is the community session issuer.
	CommunitySessionsBase string

	// UserAgent, LauncherBranch and LauncherVersion mimic the official
	// client. The providers treat them as part of the access-control
	// contract, not as cosmetics.
	UserAgent       string
	LauncherBranch  string
	LauncherVersion string

	// RequestTimeout bounds provider requests other than fallback auth.
	RequestTimeout time.Duration

	// HTTPDebug logs full request/response pairs with Authorization
	// headers redacted.
	HTTPDebug bool

	// MetaDir is the directory holding all persisted JSON caches.
	MetaDir string
}

// Load builds a Config from environment variables over defaults.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("BUTTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("auth_url", DefaultAuthURL)
	v.SetDefault("auth_timeout", DefaultAuthTimeout)
	v.SetDefault("auth_insecure", false)
	v.SetDefault("oauth_token_url", DefaultOAuthTokenURL)
	v.SetDefault("oauth_device_auth_url", DefaultOAuthDeviceAuthURL)
	v.SetDefault("account_data_base", DefaultAccountDataBase)
	v.SetDefault("official_sessions_base", DefaultOfficialSessionsBase)
	v.SetDefault("community_sessions_base", DefaultCommunitySessionsBase)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("launcher_branch", DefaultLauncherBranch)
	v.SetDefault("launcher_version", "")
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("http_debug", false)
	v.SetDefault("meta_dir", "")

	cfg := &Config{
		AuthURL:               strings.TrimSpace(v.GetString("auth_url")),
		AuthTimeout:           v.GetDuration("auth_timeout"),
		AuthInsecure:          v.GetBool("auth_insecure"),
		OAuthTokenURL:         strings.TrimSpace(v.GetString("oauth_token_url")),
		OAuthDeviceAuthURL:    strings.TrimSpace(v.GetString("oauth_device_auth_url")),
		AccountDataBase:       strings.TrimRight(strings.TrimSpace(v.GetString("account_data_base")), "/"),
		OfficialSessionsBase:  strings.TrimRight(strings.TrimSpace(v.GetString("official_sessions_base")), "/"),
		CommunitySessionsBase: strings.TrimRight(strings.TrimSpace(v.GetString("community_sessions_base")), "/"),
		UserAgent:             strings.TrimSpace(v.GetString("user_agent")),
		LauncherBranch:        strings.TrimSpace(v.GetString("launcher_branch")),
		LauncherVersion:       strings.TrimSpace(v.GetString("launcher_version")),
		RequestTimeout:        v.GetDuration("request_timeout"),
		HTTPDebug:             v.GetBool("http_debug"),
		MetaDir:               strings.TrimSpace(v.GetString("meta_dir")),
	}

	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = DefaultAuthTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.LauncherVersion == "" {
		// The official launcher reports the version baked into its
		// user-agent.
		if _, version, ok := strings.Cut(cfg.UserAgent, "/"); ok {
			cfg.LauncherVersion = version
		}
	}
	if cfg.MetaDir == "" {
		cfg.MetaDir = filepath.Join(xdg.DataHome, "butter-launcher")
	}

	return cfg
}

// CredentialPath is the premium credential bundle file.
func (c *Config) CredentialPath() string {
	return filepath.Join(c.MetaDir, "premium-auth.json")
}

// OfflineTokensPath is the offline-token store file.
func (c *Config) OfflineTokensPath() string {
	return filepath.Join(c.MetaDir, "offline-tokens.json")
}

// JwksPath is the JWKS cache file for the named issuer ("official" or
// "butter"). The two issuers never share a cache file.
func (c *Config) JwksPath(issuerName string) string {
	return filepath.Join(c.MetaDir, issuerName+"-jwks.json")
}
