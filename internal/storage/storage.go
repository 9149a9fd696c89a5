// Package storage persists submission artifacts in an S3-compatible object
// store (R2, MinIO, AWS).
package storage

import (
	"context"
	"io"
)

// ObjectStore writes named binary objects. Writes are create-only from the
// caller's perspective: keys embed a timestamp and are never rewritten.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
}
