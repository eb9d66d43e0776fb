package web

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an unused session keeps its display.
const DefaultIdleTimeout = 30 * time.Minute

type sessionEntry struct {
	display  *Display
	lastSeen time.Time
}

// Sessions maps browser sessions to their displays.
// All displays draw generations from one counter, so a session that is
// evicted and recreated never hands out a generation it already used.
type Sessions struct {
	mu          sync.Mutex
	entries     map[string]*sessionEntry
	generations atomic.Uint64
	idleTimeout time.Duration
	now         func() time.Time
}

// NewSessions creates an empty session table.
func NewSessions(idleTimeout time.Duration) *Sessions {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Sessions{
		entries:     make(map[string]*sessionEntry),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like an identifier from NewSessionID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Display returns the display of session id, creating it on first use.
func (s *Sessions) Display(id string) *Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		entry = &sessionEntry{display: newDisplay(&s.generations)}
		s.entries[id] = entry
	}
	entry.lastSeen = s.now()
	return entry.display
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Cleanup removes sessions idle for longer than the idle timeout and returns how many were removed.
func (s *Sessions) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.idleTimeout {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run periodically evicts idle sessions until ctx is done.
// onCleanup, if set, receives the remaining session count after each pass.
func (s *Sessions) Run(ctx context.Context, interval time.Duration, onCleanup func(remaining int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
			if onCleanup != nil {
				onCleanup(s.Len())
			}
		}
	}
}
