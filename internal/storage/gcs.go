package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"

	"docbridge/internal/config"
)

// gcsStorage implements the Storage interface on a Google Cloud Storage bucket.
type gcsStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCS creates a GCS-backed storage using Application Default Credentials.
func NewGCS(ctx context.Context, cfg config.GCSConfig) (Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return NewGCSWithClient(client, cfg.Bucket)
}

// NewGCSWithClient wraps an existing client.
func NewGCSWithClient(client *gcs.Client, bucket string) (Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	return &gcsStorage{client: client, bucket: bucket}, nil
}

// Put streams r into the object named key.
func (s *gcsStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if strings.TrimSpace(key) == "" {
		return ObjectInfo{}, fmt.Errorf("object key is required")
	}
	// Cancelling the writer's context aborts the upload, so a failed copy
	// never leaves a partial object behind.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(wctx)
	writer.ContentType = opt.ContentType
	writer.Metadata = opt.Metadata

	n, err := io.Copy(writer, r)
	if err != nil {
		cancel()
		_ = writer.Close()
		return ObjectInfo{}, fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("close writer: %w", err)
	}

	info := ObjectInfo{
		Bucket:      s.bucket,
		Key:         key,
		Size:        n,
		ContentType: opt.ContentType,
	}
	if attrs := writer.Attrs(); attrs != nil {
		info.ETag = attrs.Etag
		info.LastModified = attrs.Updated
	}
	return info, nil
}
