// Package scanstore stores uploaded leaf images for the mock API.
package scanstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps images in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]storedImage
}

type storedImage struct {
	data     []byte
	mimeType string
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]storedImage)}
}

// Put stores the image bytes under the key.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := make([]byte, len(data))
	copy(clone, data)
	s.blobs[key] = storedImage{data: clone, mimeType: mimeType}
	return nil
}

// Get returns the stored bytes and MIME type.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, "", fmt.Errorf("image not found: %s", key)
	}
	return blob.data, blob.mimeType, nil
}
