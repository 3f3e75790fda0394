// Package fsys is the file-system capability used by the include resolver and the
// preprocessing engine.
package fsys

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotAFile is returned when a path exists but does not name a regular file.
var ErrNotAFile = errors.New("not a regular file")

// ContentReader is a function that reads file content given a file path.
// This allows the caller to control how files are read.
type ContentReader func(filePath string) ([]byte, error)

// FileSystem answers existence checks and reads whole files.
type FileSystem interface {
	// Exists reports whether path names an existing regular file.
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// OS is the FileSystem backed by the host operating system.
type OS struct{}

func (OS) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (OS) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("failed to read %s: %w", path, ErrNotAFile)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}

// Reader returns a ContentReader backed by fs.
func Reader(fs FileSystem) ContentReader {
	return fs.ReadFile
}

// Map is an in-memory FileSystem keyed by path. It is meant for tests and for callers
// that serve unsaved editor buffers.
type Map map[string][]byte

func (m Map) Exists(path string) bool {
	_, ok := m[path]
	return ok
}

func (m Map) ReadFile(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("failed to read %s: %w", path, os.ErrNotExist)
	}
	return content, nil
}
