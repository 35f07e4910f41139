package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStore is the ObjectStore backed by Google Cloud Storage.
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore creates a storage client. Without a credentials file it uses
// Application Default Credentials (gcloud auth application-default login).
func NewGCSStore(ctx context.Context, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStore: create storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// ReadObject implements ObjectStore.
func (s *GCSStore) ReadObject(ctx context.Context, bucket, object string) ([]byte, string, error) {
	rc, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("ReadObject: open %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("ReadObject: read %s/%s: %w", bucket, object, err)
	}

	return data, rc.Attrs.ContentType, nil
}

// ListObjects implements ObjectStore. Placeholder "directory" objects whose
// name ends in "/" are skipped.
func (s *GCSStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListObjects: %s/%s: %w", bucket, prefix, err)
		}
		if attrs.Name == "" || attrs.Name[len(attrs.Name)-1] == '/' {
			continue
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// UploadFile copies a local file to bucket/object. The content type is
// detected from the file when contentType is empty.
func (s *GCSStore) UploadFile(ctx context.Context, bucket, object, filePath, contentType string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: read %q: %w", filePath, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = DetectMediaType(contentType, data)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("UploadFile: write %s/%s: %w", bucket, object, err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadFile: finalize %s/%s: %w", bucket, object, err)
	}
	return nil
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ ObjectStore = (*GCSStore)(nil)
