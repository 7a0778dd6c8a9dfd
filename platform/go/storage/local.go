package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs under a directory on disk. Suitable for tests and
// early development; production uses GCSStore.
type LocalStore struct {
	dir       string
	publicURL string
}

// NewLocalStore roots a store at dir, creating it if needed.
func NewLocalStore(dir string, publicURL string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: dir, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	cleaned := filepath.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, cleaned), nil
}

// Upload writes the body to disk and returns the public URL.
func (s *LocalStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create object file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write object %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// Delete removes the file; a missing file is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the externally reachable URL for a key.
func (s *LocalStore) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}

// Healthy verifies the storage directory is still a writable location.
func (s *LocalStore) Healthy(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("storage dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage dir %s is not a directory", s.dir)
	}
	return nil
}

var (
	_ ObjectStore   = (*LocalStore)(nil)
	_ HealthChecker = (*LocalStore)(nil)
)
