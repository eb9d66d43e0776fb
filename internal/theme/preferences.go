package theme

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
)

// toggleStripes is the number of locks toggles of different sessions are spread over.
const toggleStripes = 64

// Preferences resolves and updates the theme of a browser session.
// Toggles of one session are serialised within the process.
type Preferences struct {
	store  Store
	logger *slog.Logger
	locks  [toggleStripes]sync.Mutex
}

// NewPreferences creates preferences over store. A nil store keeps preferences in memory.
func NewPreferences(store Store, logger *slog.Logger) *Preferences {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Preferences{store: store, logger: logger}
}

// State returns the theme state of session, falling back to the default when
// nothing is stored or the store cannot be read.
func (p *Preferences) State(ctx context.Context, session string) *State {
	t, err := p.store.Load(ctx, session)
	if err != nil {
		if !errors.Is(err, ErrNoPreference) {
			p.logger.WarnContext(ctx, "failed to load theme preference", slog.Any("error", err))
		}
		return NewState(Default)
	}
	return NewState(t)
}

// Toggle flips the theme of session and stores it.
// The new theme is returned even when saving fails so the page stays responsive.
func (p *Preferences) Toggle(ctx context.Context, session string) (Theme, error) {
	mu := p.lockFor(session)
	mu.Lock()
	defer mu.Unlock()

	state := p.State(ctx, session)
	next := state.Toggle()

	if err := p.store.Save(ctx, session, next); err != nil {
		p.logger.WarnContext(ctx, "failed to save theme preference", slog.Any("error", err))
		return next, err
	}
	return next, nil
}

func (p *Preferences) lockFor(session string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(session))
	return &p.locks[h.Sum32()%toggleStripes]
}
