package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialFile_Accessors(t *testing.T) {
	file := &CredentialFile{Token: map[string]any{
		"access_token":  "  acc  ",
		"refresh_token": "ref",
	}}

	assert.Equal(t, "acc", file.AccessToken())
	assert.Equal(t, "ref", file.RefreshToken())
}

func TestCredentialFile_AccessorsAbsent(t *testing.T) {
	var file *CredentialFile
	assert.Equal(t, "", file.AccessToken())

	file = &CredentialFile{}
	assert.Equal(t, "", file.AccessToken())
	assert.Equal(t, "", file.RefreshToken())
}

func TestCredentialFile_ExpiresAtExplicit(t *testing.T) {
	file := &CredentialFile{Token: map[string]any{
		"expires_at":  float64(1_700_000_000),
		"obtained_at": float64(1),
		"expires_in":  float64(2),
	}}

	got, ok := file.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, int64(1_700_000_000), got, "explicit expires_at wins over derivation")
}

func TestCredentialFile_ExpiresAtDerived(t *testing.T) {
	file := &CredentialFile{Token: map[string]any{
		"obtained_at": float64(1_000),
		"expires_in":  float64(3_600),
	}}

	got, ok := file.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, int64(4_600), got)
}

func TestCredentialFile_ExpiresAtUnknown(t *testing.T) {
	file := &CredentialFile{Token: map[string]any{"access_token": "acc"}}
	_, ok := file.ExpiresAt()
	assert.False(t, ok)

	// expires_in alone is not enough to derive an instant.
	file.Token["expires_in"] = float64(3600)
	_, ok = file.ExpiresAt()
	assert.False(t, ok)
}

// Unknown provider fields must survive a decode/encode round trip: the
// bundle keeps them as raw values.
func TestCredentialFile_UnknownFieldsSurvive(t *testing.T) {
	raw := `{"token":{"access_token":"a","vendor_hint":{"tier":"gold"}},"profile":{"username":"p","uuid":"u"}}`

	var file CredentialFile
	require.NoError(t, json.Unmarshal([]byte(raw), &file))

	out, err := json.Marshal(file)
	require.NoError(t, err)
	assert.Contains(t, string(out), "vendor_hint")
	assert.Contains(t, string(out), `"tier":"gold"`)
}
