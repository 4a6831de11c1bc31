package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStorage keeps uploaded files in a single directory on the local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance rooted at basePath
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath returns the full path for a stored file name.
// Names containing path separators are rejected so callers cannot escape basePath.
func (s *localStorage) generatePath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name: %q", name)
	}
	return filepath.Join(s.basePath, name), nil
}

// Save writes r to a temporary file and renames it to name once fully written,
// so a partially written upload is never visible under its final name
func (s *localStorage) Save(name string, r io.Reader) error {
	path, err := s.generatePath(name)
	if err != nil {
		return err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// Open opens a stored file for reading. The caller closes it.
func (s *localStorage) Open(name string) (*os.File, error) {
	path, err := s.generatePath(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes a stored file
func (s *localStorage) Delete(name string) error {
	path, err := s.generatePath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
