package web

import (
	"sync"
	"sync/atomic"

	"github.com/vilaca/gh-lookup/internal/domain"
)

// Display holds the two render regions of one browser session.
// Every lookup takes a new generation from Begin; writes tagged with an
// older generation are discarded, so the most recently started lookup wins.
// Generations come from a counter that may be shared between displays, so
// they are increasing but not necessarily consecutive.
type Display struct {
	mu           sync.Mutex
	counter      *atomic.Uint64
	generation   uint64
	profile      Region
	repositories Region
}

// Snapshot is a copy of a display at one point in time.
type Snapshot struct {
	Generation   uint64
	Profile      Region
	Repositories Region
}

// NewDisplay creates a display with both regions hidden and its own generation counter.
func NewDisplay() *Display {
	return newDisplay(new(atomic.Uint64))
}

func newDisplay(counter *atomic.Uint64) *Display {
	return &Display{
		counter:      counter,
		profile:      HiddenRegion,
		repositories: HiddenRegion,
	}
}

// Begin starts a new lookup and returns its generation.
func (d *Display) Begin() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation = d.counter.Add(1)
	return d.generation
}

// IsCurrent reports whether gen is the latest generation handed out.
func (d *Display) IsCurrent(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return gen == d.generation
}

// ShowProfile replaces the profile region and hides the repository region
// until the repositories of this profile arrive.
func (d *Display) ShowProfile(gen uint64, profile Region) bool {
	return d.apply(gen, func() {
		d.profile = profile
		d.repositories = HiddenRegion
	})
}

// ShowRepositories replaces the repository region.
func (d *Display) ShowRepositories(gen uint64, repos Region) bool {
	return d.apply(gen, func() {
		d.repositories = repos
	})
}

// ShowError puts an error in place of the profile and hides the repositories.
func (d *Display) ShowError(gen uint64, errState Region) bool {
	return d.apply(gen, func() {
		d.profile = errState
		d.repositories = HiddenRegion
	})
}

// Snapshot returns a copy of the current regions.
func (d *Display) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Snapshot{
		Generation:   d.generation,
		Profile:      d.profile,
		Repositories: d.repositories,
	}
}

func (d *Display) apply(gen uint64, write func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.generation {
		return false
	}
	write()
	return true
}

// Repository region states reported to the page script.
const (
	repoStateList    = "list"
	repoStateEmpty   = "empty"
	repoStateFailed  = "failed"
	repoStateSkipped = "skipped"
)

// displayPresenter renders each lookup step and writes it to a display under
// one generation. It implements service.Presenter.
type displayPresenter struct {
	display    *Display
	generation uint64
	renderer   Renderer

	profile      Region
	repositories Region
	repoState    string
	err          error
}

func newDisplayPresenter(display *Display, renderer Renderer) *displayPresenter {
	return &displayPresenter{
		display:      display,
		generation:   display.Begin(),
		renderer:     renderer,
		profile:      HiddenRegion,
		repositories: HiddenRegion,
		repoState:    repoStateSkipped,
	}
}

func (p *displayPresenter) PresentProfile(profile domain.Profile) {
	region, err := p.renderer.RenderProfileCard(profile)
	if err != nil {
		p.fail(err)
		return
	}
	p.profile = region
	p.repositories = HiddenRegion
	p.display.ShowProfile(p.generation, region)
}

func (p *displayPresenter) PresentRepositories(result domain.RepositoryResult) {
	switch {
	case !result.OK():
		p.repoState = repoStateFailed
	case result.Empty():
		p.repoState = repoStateEmpty
	default:
		p.repoState = repoStateList
	}

	region := HiddenRegion
	if result.OK() {
		var err error
		if region, err = p.renderer.RenderRepositoryList(result.Repositories); err != nil {
			p.fail(err)
			return
		}
	}
	p.repositories = region
	p.display.ShowRepositories(p.generation, region)
}

func (p *displayPresenter) PresentError(lookupErr *domain.LookupError) {
	region, err := p.renderer.RenderErrorState(lookupErr.UserMessage())
	if err != nil {
		p.fail(err)
		return
	}
	p.profile = region
	p.repositories = HiddenRegion
	p.display.ShowError(p.generation, region)
}

func (p *displayPresenter) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// stale reports whether a newer lookup started in the same display.
func (p *displayPresenter) stale() bool {
	return !p.display.IsCurrent(p.generation)
}
