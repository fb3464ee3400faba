package storage

import (
	"context"
	"sync"
)

const memoryURLPrefix = "memory://photos/"

// MemoryStore is an in-memory ObjectStore for tests and local development
// without bucket credentials.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailPuts makes every Put return an error, for exercising the
	// upload-failure fallback paths.
	FailPuts bool
}

// NewMemoryStore returns an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts {
		return "", errPutFailed
	}
	cp := make([]byte, len(body))
	copy(cp, body)
	m.objects[key] = cp
	return memoryURLPrefix + key, nil
}

// KeyFromURL extracts the object key from one of this store's URLs; foreign
// URLs yield "".
func (m *MemoryStore) KeyFromURL(url string) string {
	return keyFromPrefixedURL(url, memoryURLPrefix)
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns the stored object and whether it exists.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var errPutFailed = putError{}

type putError struct{}

func (putError) Error() string { return "memory store: put failed" }
