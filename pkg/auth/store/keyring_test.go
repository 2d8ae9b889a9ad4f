package store

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringBlob_RoundTrip(t *testing.T) {
	keyring.MockInit()

	blob, err := NewKeyringBlob("butter-launcher-test", "premium")
	if err != nil {
		t.Fatalf("NewKeyringBlob() failed: %v", err)
	}

	if _, ok := blob.Read(); ok {
		t.Fatal("Read() reported a value before any Write()")
	}

	blob.Write([]byte(`{"token":{}}`))

	data, ok := blob.Read()
	if !ok || string(data) != `{"token":{}}` {
		t.Errorf("Read() = %q, %v", data, ok)
	}

	blob.Delete()
	if _, ok := blob.Read(); ok {
		t.Error("Read() reported a value after Delete()")
	}
}

func TestKeyringBlob_DefaultUser(t *testing.T) {
	blob, err := NewKeyringBlob("butter-launcher-test", "")
	if err != nil {
		t.Fatalf("NewKeyringBlob() failed: %v", err)
	}
	if blob.Location() != "keyring:butter-launcher-test/default" {
		t.Errorf("Location() = %q", blob.Location())
	}
}
