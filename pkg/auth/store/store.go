// Package store provides best-effort persistence primitives for the auth
// subsystem.
//
// Every cache in this package follows the same contract: reads never fail
// (a missing or corrupt entry reads as absent) and writes are best-effort.
// Losing a cache write degrades to a network re-fetch, never to a crash.
// File-backed values are written atomically (temp file, then rename) so a
// crash mid-write cannot tear the previous good value.
package store

import "fmt"

// Blob is a single best-effort binary value.
type Blob interface {
	// Read returns the stored bytes, or false if nothing usable is stored.
	Read() ([]byte, bool)
	// Write stores data. Failures are swallowed; the previous value, if
	// any, stays intact.
	Write(data []byte)
	// Delete removes the stored value if present.
	Delete()
	// Location describes where the value lives, for logging.
	Location() string
}

// Type selects a Blob backend.
type Type string

const (
	// TypeFile stores values as JSON files with atomic writes.
	TypeFile Type = "file"
	// TypeKeyring stores values in the OS keyring.
	TypeKeyring Type = "keyring"
	// TypeMemory keeps values in memory only (tests, ephemeral runs).
	TypeMemory Type = "memory"
)

// Config selects and parameterizes a Blob backend.
type Config struct {
	Type Type
	// Path is the target file for TypeFile.
	Path string
	// KeyringService and KeyringUser identify the entry for TypeKeyring.
	KeyringService string
	KeyringUser    string
}

// New creates a Blob from config.
func New(config *Config) (Blob, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	switch config.Type {
	case TypeFile:
		if config.Path == "" {
			return nil, fmt.Errorf("path is required for file storage")
		}
		return NewFileBlob(config.Path), nil
	case TypeKeyring:
		return NewKeyringBlob(config.KeyringService, config.KeyringUser)
	case TypeMemory:
		return NewMemoryBlob(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
}
