package storage

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockStore is an in-memory BlobStore for tests.
type MockStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	// FailUploadAfter makes the (n+1)-th upload fail when >= 0.
	FailUploadAfter int
	uploads         int
}

func NewMockStore() *MockStore {
	return &MockStore{
		objects:         make(map[string][]byte),
		FailUploadAfter: -1,
	}
}

func (m *MockStore) Upload(_ context.Context, dir, ext, _ string, data []byte) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUploadAfter >= 0 && m.uploads >= m.FailUploadAfter {
		return nil, fmt.Errorf("simulated upload failure")
	}
	m.uploads++

	key := fmt.Sprintf("%s/%s.%s", dir, primitive.NewObjectID().Hex(), ext)
	m.objects[key] = data
	return &UploadResult{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (m *MockStore) DeleteMany(_ context.Context, keys []string) map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

// UploadCount returns how many uploads have succeeded.
func (m *MockStore) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}

// Deleted returns every key passed to DeleteMany, in order.
func (m *MockStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// Stored reports whether a key currently exists.
func (m *MockStore) Stored(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
