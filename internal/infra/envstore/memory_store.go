package envstore

import (
	"context"
	"sync"
	"time"

	"github.com/cropcare/cropcare-go/internal/domain/envcontext"
	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
)

type weatherEntry struct {
	payload   healthcheck.WeatherContext
	expiresAt time.Time
}

type airEntry struct {
	payload   healthcheck.AirContext
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the env cache for
// tests/dev and single-run CLI sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	weather map[string]weatherEntry
	air     map[string]airEntry
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		weather: make(map[string]weatherEntry),
		air:     make(map[string]airEntry),
	}
}

// GetWeather implements envcontext.Store.
func (s *MemoryStore) GetWeather(_ context.Context, key string) (healthcheck.WeatherContext, bool, error) {
	s.mu.RLock()
	entry, ok := s.weather[key]
	s.mu.RUnlock()
	if !ok {
		return healthcheck.WeatherContext{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.weather, key)
		s.mu.Unlock()
		return healthcheck.WeatherContext{}, false, nil
	}
	return entry.payload, true, nil
}

// SaveWeather caches a weather result with optional TTL.
func (s *MemoryStore) SaveWeather(_ context.Context, key string, value healthcheck.WeatherContext, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather[key] = weatherEntry{payload: value, expiresAt: expiry(ttl)}
	return nil
}

// GetAir implements envcontext.Store.
func (s *MemoryStore) GetAir(_ context.Context, key string) (healthcheck.AirContext, bool, error) {
	s.mu.RLock()
	entry, ok := s.air[key]
	s.mu.RUnlock()
	if !ok {
		return healthcheck.AirContext{}, false, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.air, key)
		s.mu.Unlock()
		return healthcheck.AirContext{}, false, nil
	}
	return entry.payload, true, nil
}

// SaveAir caches an air quality result with optional TTL.
func (s *MemoryStore) SaveAir(_ context.Context, key string, value healthcheck.AirContext, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.air[key] = airEntry{payload: value, expiresAt: expiry(ttl)}
	return nil
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ envcontext.Store = (*MemoryStore)(nil)
