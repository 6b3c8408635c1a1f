// Package tempfile provides scoped lifecycle management for the ephemeral
// files written by file-based synthesis adapters. Names are random, never
// derived from wall-clock time, so concurrent requests cannot collide.
package tempfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Manager hands out uniquely named temporary files under a single directory.
type Manager struct {
	dir string
}

// NewManager creates a manager rooted at dir. An empty dir means the system
// temp directory.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create temp directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the directory files are created in.
func (m *Manager) Dir() string { return m.dir }

// File is one scoped temporary file. Release removes it; calling Release more
// than once is safe.
type File struct {
	Path string

	once sync.Once
	err  error
}

// New reserves a uniquely named file with the given extension (without dot).
// The file exists, empty, when New returns.
func (m *Manager) New(ext string) (*File, error) {
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(m.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("unable to create temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("unable to close temp file: %w", err)
	}
	return &File{Path: path}, nil
}

// Release deletes the file. A file that is already gone is not an error.
func (f *File) Release() error {
	f.once.Do(func() {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			f.err = fmt.Errorf("unable to remove temp file: %w", err)
		}
	})
	return f.err
}

// WithFile runs fn with a fresh temporary file path and removes the file when
// fn returns, on the success, error and panic paths alike.
func (m *Manager) WithFile(ext string, fn func(path string) error) error {
	f, err := m.New(ext)
	if err != nil {
		return err
	}
	defer f.Release() //nolint:errcheck
	return fn(f.Path)
}
