package store

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringBlob stores a value in the OS keyring (macOS Keychain, GNOME
// Keyring, Windows Credential Manager). Intended for the premium
// credential bundle on systems where a plaintext file is unwanted.
type KeyringBlob struct {
	service string
	user    string
}

// NewKeyringBlob creates a keyring-backed blob.
func NewKeyringBlob(service, user string) (*KeyringBlob, error) {
	if service == "" {
		return nil, fmt.Errorf("keyring service is required")
	}
	if user == "" {
		user = "default"
	}
	return &KeyringBlob{service: service, user: user}, nil
}

// Read returns the keyring entry, or false if it is absent or the
// keyring is unavailable.
func (k *KeyringBlob) Read() ([]byte, bool) {
	data, err := keyring.Get(k.service, k.user)
	if err != nil || data == "" {
		return nil, false
	}
	return []byte(data), true
}

// Write stores data in the keyring. The keyring updates entries
// in place, so no extra atomicity step is needed. Failures are swallowed.
func (k *KeyringBlob) Write(data []byte) {
	_ = keyring.Set(k.service, k.user, string(data))
}

// Delete removes the keyring entry if present.
func (k *KeyringBlob) Delete() {
	_ = keyring.Delete(k.service, k.user)
}

// Location identifies the keyring entry for logging.
func (k *KeyringBlob) Location() string {
	return "keyring:" + k.service + "/" + k.user
}
