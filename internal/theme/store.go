package theme

import (
	"context"
	"errors"
	"sync"
)

// ErrNoPreference is returned by a Store when nothing was saved for a key.
var ErrNoPreference = errors.New("no theme preference stored")

// Store persists theme preferences keyed by browser session.
type Store interface {
	Load(ctx context.Context, key string) (Theme, error)
	Save(ctx context.Context, key string, t Theme) error
}

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	themes map[string]Theme
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		themes: make(map[string]Theme),
	}
}

// Load returns the stored theme or ErrNoPreference.
func (s *MemoryStore) Load(_ context.Context, key string) (Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.themes[key]
	if !ok {
		return "", ErrNoPreference
	}
	return t, nil
}

// Save stores t for key.
func (s *MemoryStore) Save(_ context.Context, key string, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.themes[key] = t
	return nil
}
