package store

import (
	"os"
	"path/filepath"
)

// FileBlob stores a value as a single file, written atomically.
type FileBlob struct {
	path string
}

// NewFileBlob creates a file-backed blob at path. The parent directory is
// created on first write.
func NewFileBlob(path string) *FileBlob {
	return &FileBlob{path: path}
}

// Read returns the file contents, or false if the file is missing,
// unreadable, or empty.
func (f *FileBlob) Read() ([]byte, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Write stores data atomically: write a sibling temp file, then rename it
// over the target. A crash between the two steps leaves the previous
// value intact. Failures are swallowed.
func (f *FileBlob) Write(data []byte) {
	_ = f.writeAtomic(data)
}

func (f *FileBlob) writeAtomic(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Delete removes the file if present.
func (f *FileBlob) Delete() {
	_ = os.Remove(f.path)
}

// Location returns the file path.
func (f *FileBlob) Location() string {
	return f.path
}
