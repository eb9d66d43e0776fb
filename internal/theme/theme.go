// Package theme holds the light/dark display preference and its persistence.
package theme

import (
	"fmt"
	"sync"
)

// Theme is a display theme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is the theme used when no preference has been stored.
const Default = Light

// Parse accepts exactly "light" or "dark".
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// String implements fmt.Stringer.
func (t Theme) String() string {
	return string(t)
}

// State is the current theme of one display.
// The zero value is light. Safe for concurrent use.
type State struct {
	mu      sync.Mutex
	current Theme
}

// NewState creates a state starting at t.
func NewState(t Theme) *State {
	return &State{current: t}
}

// Get returns the current theme.
func (s *State) Get() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return Default
	}
	return s.current
}

// Toggle flips the theme and returns the new value.
func (s *State) Toggle() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		s.current = Default
	}
	s.current = s.current.Toggled()
	return s.current
}
