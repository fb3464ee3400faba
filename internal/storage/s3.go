package storage

import (
	"bytes"
	"context"
	"fmt"

	"mingle/internal/config"
	"mingle/internal/observability"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store is an ObjectStore backed by an S3-compatible bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	// baseURL is the public prefix for stored objects, without trailing slash.
	baseURL string
}

// NewS3Store builds an S3-compatible object store from the configured
// bucket credentials. The bucket must already exist; this code defines no
// lifecycle policy.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3Key, cfg.S3Secret, ""),
		Secure: true,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &S3Store{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: fmt.Sprintf("https://%s/%s", cfg.S3Endpoint, cfg.S3Bucket),
	}, nil
}

// Put uploads body under key and returns the object's public URL.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		observability.StorageOperations.WithLabelValues("put", "error").Inc()
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	observability.StorageOperations.WithLabelValues("put", "ok").Inc()
	observability.UploadBytes.Observe(float64(len(body)))
	return s.baseURL + "/" + key, nil
}

// KeyFromURL extracts the object key from one of this store's public URLs;
// URLs outside the bucket's base prefix yield "".
func (s *S3Store) KeyFromURL(url string) string {
	return keyFromPrefixedURL(url, s.baseURL+"/")
}

// Delete removes the object stored under key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		observability.StorageOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	observability.StorageOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}
