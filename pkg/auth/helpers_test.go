package auth

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Astinix/Butter-Launcher/pkg/auth/types"
	"github.com/Astinix/Butter-Launcher/pkg/config"
)

// testConfig points every endpoint at an unroutable address; tests swap
// in httptest servers for the endpoints they exercise.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AuthURL:               "http://192.0.2.1/auth/login",
		AuthTimeout:           2 * time.Second,
		OAuthTokenURL:         "http://192.0.2.1/oauth2/token",
		OAuthDeviceAuthURL:    "http://192.0.2.1/oauth2/auth/device",
		AccountDataBase:       "http://192.0.2.1/account-data",
		OfficialSessionsBase:  "http://192.0.2.1/official-sessions",
		CommunitySessionsBase: "http://192.0.2.1/butter-sessions",
		UserAgent:             "hytale-launcher/test-1",
		LauncherBranch:        "release",
		LauncherVersion:       "test-1",
		RequestTimeout:        2 * time.Second,
		MetaDir:               t.TempDir(),
	}
}

func newTestClient(t *testing.T, cfg *config.Config) *Client {
	t.Helper()
	return New(cfg, zerolog.Nop())
}

func seedCredentials(t *testing.T, cfg *config.Config, file types.CredentialFile) {
	t.Helper()
	data, err := json.MarshalIndent(file, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(cfg.MetaDir, 0700))
	require.NoError(t, os.WriteFile(cfg.CredentialPath(), data, 0600))
}

func readCredentials(t *testing.T, cfg *config.Config) types.CredentialFile {
	t.Helper()
	data, err := os.ReadFile(cfg.CredentialPath())
	require.NoError(t, err)
	var file types.CredentialFile
	require.NoError(t, json.Unmarshal(data, &file))
	return file
}

func readOfflineStore(t *testing.T, cfg *config.Config) types.OfflineTokens {
	t.Helper()
	data, err := os.ReadFile(cfg.OfflineTokensPath())
	require.NoError(t, err)
	var st types.OfflineTokens
	require.NoError(t, json.Unmarshal(data, &st))
	return st
}

// fakeJWT builds an unsigned-but-well-formed JWT for claim inspection.
func fakeJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]any{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	sig := base64.RawURLEncoding.EncodeToString([]byte("fake-signature"))
	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + "." + sig
}

const testUUID = "0f8fad5b-d9cb-469f-a165-70867728950e"
