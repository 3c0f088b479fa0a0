// Package memory implements the credential and preference stores in process
// memory. State is lost on exit; it backs tests and ACTIONPANEL_DB_PATH="".
package memory

import (
	"context"
	"sync"

	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CredentialStore = (*Store)(nil)
	_ driven.PreferenceStore = (*Store)(nil)
)

// Store holds one credential and a preference map behind a mutex.
type Store struct {
	mu    sync.RWMutex
	token string
	prefs map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{prefs: make(map[string]string)}
}

// Get returns the credential, or "" when none is held.
func (s *Store) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Set replaces the credential.
func (s *Store) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear drops the credential.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// GetPreference returns the value for key, or "" if unset.
func (s *Store) GetPreference(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs[key], nil
}

// SetPreference stores value under key.
func (s *Store) SetPreference(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
	return nil
}
