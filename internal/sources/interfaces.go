package sources

import (
	"context"
)

// ObjectStore provides read access to a cloud object store.
// This interface enables mocking and testing of storage functionality.
type ObjectStore interface {
	// ReadObject downloads an object and reports its declared content type,
	// which may be empty.
	ReadObject(ctx context.Context, bucket, object string) ([]byte, string, error)

	// ListObjects returns the names of all objects under prefix in name order.
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
}
