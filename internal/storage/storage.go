package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ObjectRef identifies a stored object: the URL it can be fetched from
// and the key it was stored under.
type ObjectRef struct {
	URL string
	Key string
}

// ProgressFunc receives upload progress as a percentage in [0, 100].
// Implementations may call it sparsely; the terminal 100 is only
// guaranteed via the Upload call returning.
type ProgressFunc func(pct int)

// ObjectStorage defines the interface for object storage operations.
type ObjectStorage interface {
	// Upload streams body to the storage provider under objectKey,
	// reporting progress as bytes are consumed. size is the total
	// byte count of body and must be accurate.
	Upload(ctx context.Context, objectKey, contentType string, body io.Reader, size int64, onProgress ProgressFunc) (ObjectRef, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading/viewing an object directly from the provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
