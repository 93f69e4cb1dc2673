// Package auth holds the process-wide bearer credential cell. The cell
// is written by an external auth collaborator (login/logout) and read
// fresh per call by the transport client, so credential changes are
// observed without reconstructing clients.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore is a concurrency-safe credential cell.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore seeds the cell, usually from config or environment.
func NewTokenStore(initial string) *TokenStore {
	return &TokenStore{token: strings.TrimSpace(initial)}
}

// Set installs a new credential, replacing any prior one.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

// Clear removes the stored credential.
func (s *TokenStore) Clear() {
	s.Set("")
}

// Token returns the current credential, empty when signed out.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthed reports whether a credential is present.
func (s *TokenStore) IsAuthed() bool {
	return s.Token() != ""
}

// ExpiresAt inspects the stored token as a JWT without verifying the
// signature and reports its expiry claim. Opaque tokens report no expiry.
func (s *TokenStore) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the stored token carries an expiry in the past.
func (s *TokenStore) Expired(now time.Time) bool {
	expiry, ok := s.ExpiresAt()
	return ok && expiry.Before(now)
}
