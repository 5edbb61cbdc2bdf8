package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBaseDir is returned when a response file resolves outside the base directory.
var ErrOutsideBaseDir = errors.New("response file is outside the mocks directory")

// ResponseStore reads mock response files relative to a base directory.
type ResponseStore struct {
	baseDir string
}

// NewResponseStore creates a store rooted at baseDir.
func NewResponseStore(baseDir string) (*ResponseStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mocks directory: %w", err)
	}
	return &ResponseStore{baseDir: abs}, nil
}

// BaseDir returns the absolute base directory.
func (s *ResponseStore) BaseDir() string {
	return s.baseDir
}

// Resolve returns the absolute path of name, rejecting paths that escape the base directory.
func (s *ResponseStore) Resolve(name string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBaseDir, name)
	}
	return path, nil
}

// Stat checks that name exists and is a regular file.
func (s *ResponseStore) Stat(name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("response file not found: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("response file %s is a directory", name)
	}
	return nil
}

// Read returns the content of name.
func (s *ResponseStore) Read(name string) ([]byte, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read response file: %w", err)
	}
	return data, nil
}
