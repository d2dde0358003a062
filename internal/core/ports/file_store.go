package ports

import (
	"context"
	"io"
	"time"
)

// FileInfo describes a stored object.
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// FileStore keeps uploaded contract documents.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, FileInfo, error)
	Stat(ctx context.Context, key string) (FileInfo, error)
	Remove(ctx context.Context, key string) error
}

// CleanupQueue removes replaced or orphaned objects in the background.
type CleanupQueue interface {
	Enqueue(key string)
}
