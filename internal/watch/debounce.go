package watch

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sitepipe/sitepipe/internal/fsutil"
)

type state int

const (
	stateIdle state = iota
	statePending
	stateInvoking
)

func (s state) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateInvoking:
		return "invoking"
	default:
		return "idle"
	}
}

// binding is the runtime state of one Binding.
type binding struct {
	Binding
	matcher *fsutil.Matcher

	mu     sync.Mutex
	state  state
	timer  *time.Timer
	gen    uint64
	queued bool
	paths  map[string]struct{}
}

// trigger records a matching change. It returns true when a new quiescence
// window was started.
func (b *binding) trigger(rel string, window time.Duration, fire func(gen uint64)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.paths[rel] = struct{}{}

	switch b.state {
	case stateInvoking:
		b.queued = true
		return false
	case statePending:
		b.timer.Stop()
	}
	b.state = statePending
	b.schedule(window, fire)
	return true
}

// schedule starts a new window. b.mu must be held.
func (b *binding) schedule(window time.Duration, fire func(gen uint64)) {
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(window, func() { fire(gen) })
}

// begin moves a pending binding whose window gen elapsed to invoking and
// returns the changed paths. It reports false for a stale timer.
func (b *binding) begin(gen uint64) ([]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != statePending || b.gen != gen {
		return nil, false
	}
	b.state = stateInvoking
	paths := slices.Sorted(maps.Keys(b.paths))
	clear(b.paths)
	return paths, true
}

// finish ends an invocation. A change seen while invoking starts a fresh
// window instead of going idle.
func (b *binding) finish(window time.Duration, fire func(gen uint64)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queued {
		b.queued = false
		b.state = statePending
		b.schedule(window, fire)
		return
	}
	b.state = stateIdle
}

// stop cancels a pending window.
func (b *binding) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	if b.state == statePending {
		b.state = stateIdle
	}
	b.queued = false
}
