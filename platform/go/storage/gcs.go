package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore serves wallpaper blobs from a Google Cloud Storage bucket.
type GCSStore struct {
	client    *storage.Client
	bucket    string
	publicURL string
}

// NewGCSStore wraps a GCS client for one bucket. publicURL is the CDN or
// bucket base URL prepended to object keys.
func NewGCSStore(client *storage.Client, bucket string, publicURL string) *GCSStore {
	if client == nil {
		panic("gcs store requires client")
	}
	if bucket == "" {
		panic("gcs store requires bucket")
	}
	return &GCSStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Upload streams the body into the bucket and returns the public URL.
func (s *GCSStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.ContentDisposition = "inline"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// Delete removes the object; deleting an already-missing blob is not an error.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the externally reachable URL for a key.
func (s *GCSStore) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}

// Healthy verifies bucket access by reading its attributes and listing at
// most one object under the wallpapers prefix.
func (s *GCSStore) Healthy(ctx context.Context) error {
	bkt := s.client.Bucket(s.bucket)
	if _, err := bkt.Attrs(ctx); err != nil {
		return fmt.Errorf("bucket attrs: %w", err)
	}

	it := bkt.Objects(ctx, &storage.Query{Prefix: "wallpapers/"})
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("list prefix: %w", err)
	}
	return nil
}

var (
	_ ObjectStore   = (*GCSStore)(nil)
	_ HealthChecker = (*GCSStore)(nil)
)
