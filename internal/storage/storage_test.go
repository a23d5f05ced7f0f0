package storage

import (
	"testing"

	"tiktokapi/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		s, err := New("gcs", config.MinIOConfig{}, config.S3Config{})
		assert.Nil(t, s)
		assert.EqualError(t, err, `unsupported storage driver "gcs"`)
	})

	t.Run("minio requires endpoint", func(t *testing.T) {
		_, err := New("minio", config.MinIOConfig{}, config.S3Config{})
		assert.EqualError(t, err, "minio endpoint is required")
	})

	t.Run("minio requires credentials", func(t *testing.T) {
		_, err := New("", config.MinIOConfig{Endpoint: "localhost:9000"}, config.S3Config{})
		assert.EqualError(t, err, "minio credentials are required")
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		_, err := New("s3", config.MinIOConfig{}, config.S3Config{Region: "us-east-1"})
		assert.EqualError(t, err, "s3 bucket is required")
	})

	t.Run("s3 with custom endpoint", func(t *testing.T) {
		s, err := New("s3", config.MinIOConfig{}, config.S3Config{
			Region:   "us-east-1",
			Bucket:   "fetches",
			Endpoint: "http://localhost:4566",
		})
		assert.NoError(t, err)
		assert.IsType(t, &s3Storage{}, s)
	})
}
