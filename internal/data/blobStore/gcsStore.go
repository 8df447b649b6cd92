package blobStore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/google/uuid"
)

const objectPrefix = "documents/"

// GCSStore keeps uploads in one bucket. Locations look like gs://bucket/key.
type GCSStore struct {
	client *storage.Client
	bucket string
	logger *logger_i.Logger
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("missing gcs bucket name")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, logger: logger_i.NewLogger("GCS")}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := ParseGCSLocation(location)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	rc, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", location, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

func (s *GCSStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key := objectPrefix + uuid.NewString() + "-" + path.Base(name)
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return "", 0, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close GCS writer: %w", err)
	}
	s.logger.Debug("stored object", "bucket", s.bucket, "key", key, "bytes", n)
	return gcsScheme + s.bucket + "/" + key, n, nil
}

// ParseGCSLocation splits gs://bucket/key.
func ParseGCSLocation(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", commonModels.ErrUnsupportedLocation, location)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", commonModels.ErrUnsupportedLocation, location)
	}
	return bucket, key, nil
}
