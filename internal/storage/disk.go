package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects under a local directory tree and serves them from a
// configured public base URL. It is the default backend and the one used in
// tests.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore constructs a disk-backed object store rooted at root.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the object, refusing to overwrite unless opts.Upsert is set.
func (s *DiskStore) Upload(_ context.Context, bucket, path string, data []byte, opts UploadOptions) error {
	target, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if !opts.Upsert {
		if _, err := os.Stat(target); err == nil {
			return ErrObjectExists
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage: create object directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("storage: write object: %w", err)
	}
	return nil
}

// PublicURL returns the URL the object is served from.
func (s *DiskStore) PublicURL(bucket, path string) string {
	return s.baseURL + "/" + bucket + "/" + strings.TrimLeft(path, "/")
}

func (s *DiskStore) resolve(bucket, path string) (string, error) {
	if bucket == "" || path == "" {
		return "", ErrInvalidPath
	}
	cleaned := filepath.Clean(filepath.Join(bucket, path))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, cleaned), nil
}
