package sources

import (
	"context"
	"sync"
)

// MockObjectStore is an ObjectStore whose behaviour is set per test.
type MockObjectStore struct {
	ReadObjectFunc  func(ctx context.Context, bucket, object string) ([]byte, string, error)
	ListObjectsFunc func(ctx context.Context, bucket, prefix string) ([]string, error)

	mu    sync.Mutex
	reads []string
}

func (m *MockObjectStore) ReadObject(ctx context.Context, bucket, object string) ([]byte, string, error) {
	m.mu.Lock()
	m.reads = append(m.reads, bucket+"/"+object)
	m.mu.Unlock()

	if m.ReadObjectFunc != nil {
		return m.ReadObjectFunc(ctx, bucket, object)
	}
	return nil, "", nil
}

func (m *MockObjectStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	if m.ListObjectsFunc != nil {
		return m.ListObjectsFunc(ctx, bucket, prefix)
	}
	return nil, nil
}
