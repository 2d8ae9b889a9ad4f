package store

import "encoding/json"

// JSON wraps a Blob with typed JSON encoding. It keeps the blob contract:
// Read never fails (a corrupt document reads as absent) and Write is
// best-effort.
type JSON[T any] struct {
	blob Blob
}

// NewJSON creates a typed JSON view over blob.
func NewJSON[T any](blob Blob) *JSON[T] {
	return &JSON[T]{blob: blob}
}

// Read returns the decoded value, or false if nothing usable is stored.
func (c *JSON[T]) Read() (T, bool) {
	var v T
	data, ok := c.blob.Read()
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Write encodes v and stores it. Failures are swallowed.
func (c *JSON[T]) Write(v T) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	c.blob.Write(data)
}

// Delete removes the stored value if present.
func (c *JSON[T]) Delete() {
	c.blob.Delete()
}

// Location describes where the value lives, for logging.
func (c *JSON[T]) Location() string {
	return c.blob.Location()
}
