// Package storage abstracts the object store holding wallpaper image blobs.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// MaxImageSize bounds uploaded wallpaper files.
const MaxImageSize = 50 * 1024 * 1024

// ObjectStore is the minimal blob surface the catalog needs: the admin upload
// path writes, deletion of superseded images removes.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// HealthChecker is implemented by stores that can verify access to their
// backend. Readiness probes type-assert for it.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ValidateImage checks the declared content type and size of an upload before
// any bytes hit the object store.
func ValidateImage(contentType string, size int64) error {
	if _, ok := allowedImageTypes[contentType]; !ok {
		return fmt.Errorf("invalid file type %q: only JPEG, PNG, and WebP are allowed", contentType)
	}
	if size > MaxImageSize {
		return fmt.Errorf("file too large: maximum size is %d bytes", int64(MaxImageSize))
	}
	return nil
}

// ExtensionFor maps an image content type to its canonical file extension,
// defaulting to jpg.
func ExtensionFor(contentType string) string {
	if ext, ok := allowedImageTypes[contentType]; ok {
		return ext
	}
	return "jpg"
}

// WallpaperKey derives a collision-resistant object key from the wallpaper
// title and file extension, e.g. "wallpapers/sunset-beach-1735689600.jpg".
func WallpaperKey(title string, extension string) string {
	return wallpaperKeyAt(title, extension, time.Now())
}

func wallpaperKeyAt(title string, extension string, now time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	sanitized := b.String()
	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}
	sanitized = strings.Trim(sanitized, "-")
	if sanitized == "" {
		sanitized = "wallpaper"
	}

	return fmt.Sprintf("wallpapers/%s-%d.%s", sanitized, now.Unix(), extension)
}
