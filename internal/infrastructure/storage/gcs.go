package storage

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes blobs to a Google Cloud Storage bucket
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCSStore creates a GCS-backed store. Application default credentials
// are used unless credJSON is set.
func NewGCSStore(ctx context.Context, bucket, credJSON string) (*GCSStore, error) {
	var (
		client *storage.Client
		err    error
	)
	if strings.TrimSpace(credJSON) != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	return &GCSStore{
		client:  client,
		bucket:  bucket,
		baseURL: "https://storage.googleapis.com/" + bucket,
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}

	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *GCSStore) Kind() string {
	return "gcs"
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
