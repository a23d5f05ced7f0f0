// Package storage contains object storage abstractions for S3-compatible stores.
// Implementations rely on streaming I/O only and never touch local disk.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"tiktokapi/internal/config"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New returns the backend selected by driver ("minio" or "s3").
func New(driver string, mc config.MinIOConfig, sc config.S3Config) (Storage, error) {
	switch driver {
	case "", "minio":
		return NewMinIO(mc)
	case "s3":
		return NewS3(sc)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
