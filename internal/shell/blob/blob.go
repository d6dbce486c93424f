// Package blob provides durable storage for published site content.
package blob

import (
	"context"
	"errors"
)

// =============================================================================
// BlobStore Interface
// =============================================================================

var (
	// ErrNotFound is returned when no content exists under a key.
	ErrNotFound = errors.New("content not found")

	// ErrInvalidKey is returned for keys that escape the store's namespace.
	ErrInvalidKey = errors.New("invalid content key")
)

// Store is the durable store for published site documents. Content is
// addressed by a path-like key derived from (subdomain, slug).
type Store interface {
	// Write stores content under key, replacing any previous content.
	Write(ctx context.Context, key string, content []byte) error

	// Read returns the content stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// SiteKey derives the content key for a published site.
func SiteKey(subdomain, slug string) string {
	return subdomain + "/" + slug + "/index.html"
}
