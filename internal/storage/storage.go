// Package storage provides the object storage client used for attendee photos.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ObjectStore uploads photo objects to a bucket and returns public URLs.
// Implementations must be safe for concurrent use by request handlers.
type ObjectStore interface {
	// Put uploads body under key with the given content type and returns
	// the public URL of the stored object.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Delete removes the object stored under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error
	// KeyFromURL extracts the object key from a public URL previously
	// returned by Put. URLs that do not belong to this store yield "", so
	// records pointing at foreign hosts never trigger bucket deletes.
	KeyFromURL(url string) string
}

// PhotoKey builds the object key for an attendee photo:
// <username>-<unix millis>.jpg. The timestamp keeps successive uploads for
// the same attendee from overwriting each other.
func PhotoKey(username string, now time.Time) string {
	return fmt.Sprintf("%s-%d.jpg", username, now.UnixMilli())
}

// ThumbKey builds the object key for the WebP gallery thumbnail that is
// uploaded alongside the full-size photo.
func ThumbKey(username string, now time.Time) string {
	return fmt.Sprintf("%s-%d.webp", username, now.UnixMilli())
}

// keyFromPrefixedURL strips prefix from url and returns the remaining object
// key, or "" when the URL is outside the prefix or names a nested path.
func keyFromPrefixedURL(url, prefix string) string {
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "/") {
		return ""
	}
	return key
}
