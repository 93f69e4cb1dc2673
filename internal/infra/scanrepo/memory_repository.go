package scanrepo

import (
	"context"
	"sync"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

// MemoryRepository is an in-memory detection store used for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	detections []healthcheck.Detection
}

// NewMemoryRepository constructs a repository backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert appends a detection.
func (r *MemoryRepository) Insert(_ context.Context, detection healthcheck.Detection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detections = append(r.detections, detection)
	return nil
}

// List returns detections newest first.
func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]healthcheck.Detection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := len(r.detections)
	if offset >= total {
		return nil, nil
	}
	out := make([]healthcheck.Detection, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.detections[i])
	}
	return out, nil
}
