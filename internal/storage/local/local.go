// Package local stores artifacts on the local filesystem, mirroring the
// object-storage key layout as a directory tree.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pdfdigest/internal/port"
)

type localStorage struct {
	root string
}

// NewLocalStorage creates a filesystem-backed ObjectStorage rooted at dir.
func NewLocalStorage(dir string) (port.ObjectStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &localStorage{root: dir}, nil
}

func (l *localStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	path, err := l.resolve(input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating artifact file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, input.Body); err != nil {
		return nil, fmt.Errorf("writing artifact: %w", err)
	}
	return &port.UploadOutput{Location: path}, nil
}

func (l *localStorage) Delete(ctx context.Context, key string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	return nil
}

// resolve maps an object key to a path under the root, rejecting keys
// that would escape it.
func (l *localStorage) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}
	return filepath.Join(l.root, cleaned), nil
}
