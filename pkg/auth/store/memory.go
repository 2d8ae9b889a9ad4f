package store

import "sync"

// MemoryBlob keeps a value in memory only. Used by tests and callers that
// must not persist credentials.
type MemoryBlob struct {
	mu     sync.Mutex
	data   []byte
	stored bool
}

// NewMemoryBlob creates an empty in-memory blob.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{}
}

// Read returns the stored bytes, or false if nothing has been written.
func (m *MemoryBlob) Read() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stored {
		return nil, false
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, true
}

// Write stores a copy of data.
func (m *MemoryBlob) Write(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make([]byte, len(data))
	copy(m.data, data)
	m.stored = true
}

// Delete clears the stored value.
func (m *MemoryBlob) Delete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.stored = false
}

// Location identifies the blob for logging.
func (m *MemoryBlob) Location() string {
	return "memory"
}
