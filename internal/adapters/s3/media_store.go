package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaStore implements ports.MediaStore on any S3-compatible backend.
// Narration audio and tour imagery live in a single public-read bucket;
// PresignedGet exists for the rare private object.
type MediaStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New creates a MediaStore and ensures the bucket exists. publicURL is the
// CDN or endpoint prefix baked into returned object URLs.
func New(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*MediaStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("s3 bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("s3 make bucket: %w", err)
		}
	}

	return &MediaStore{client: client, bucket: bucket, publicURL: publicURL}, nil
}

// Upload stores an object and returns its public URL.
func (m *MediaStore) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, key), nil
}

// PresignedGet returns a time-limited download URL for an object.
func (m *MediaStore) PresignedGet(ctx context.Context, key string, expirySeconds int) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key,
		time.Duration(expirySeconds)*time.Second, url.Values{})
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return u.String(), nil
}

// Delete removes an object.
func (m *MediaStore) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}
