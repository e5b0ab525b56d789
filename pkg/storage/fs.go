// Package storage is the payment-proof object store: file save/remove plus
// HMAC-signed, time-limited URLs for admin-only viewing.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FS stores proofs under a root directory, mirroring the
// "<bucket-slug>/<reference id>.<ext>" layout of the upload paths.
type FS struct {
	root   string
	logger *zap.Logger
}

func NewFS(root string, logger *zap.Logger) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("NewFS failed: %w", err)
	}
	return &FS{root: root, logger: logger}, nil
}

// Save writes the proof and returns the stored path (same as given).
func (f *FS) Save(ctx context.Context, path string, r io.Reader) (string, error) {
	full, err := f.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("Save failed: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("Save failed: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("Save failed: %w", err)
	}
	return path, nil
}

// Remove deletes a stored proof. Removing an already-absent path is not an
// error: the compensating cleanup after a failed insert may race a retry.
func (f *FS) Remove(ctx context.Context, path string) error {
	full, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Remove failed: %w", err)
	}
	return nil
}

// Open returns the stored file for serving.
func (f *FS) Open(path string) (io.ReadCloser, error) {
	full, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("Open failed: %w", err)
	}
	return file, nil
}

// resolve rejects traversal out of the root.
func (f *FS) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("storage: invalid path %q", path)
	}
	return filepath.Join(f.root, clean), nil
}
