// Package bar is the redraw coordinator: the state shared between producers
// and the draw loop, the signal protocol between them, and frame layout.
package bar

import (
	"fmt"
	"sync"

	"github.com/1broseidon/hlbar/internal/telemetry"
)

// Geometry is the strip's position and size on screen and the index of the
// monitor it belongs to.
type Geometry struct {
	X       int
	Y       int
	Width   int
	Height  int
	Monitor int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d+%d+%d@%d", g.Width, g.Height, g.X, g.Y, g.Monitor)
}

// Frame is a consistent snapshot of everything one draw pass needs.
type Frame struct {
	Geometry Geometry
	Layout   Layout
}

// State is the single region shared by producers and the draw loop.
//
// One mutex guards the pending-redraw flag, the geometry, the module lists
// and the lifecycle flag, so that a geometry change and the redraw it asks
// for are always observed together.
type State struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending bool
	closed  bool

	geometry Geometry
	maxWidth int
	layout   Layout

	metrics *telemetry.Metrics
}

// NewState creates the shared state. The initial geometry width is also the
// upper bound for later width changes, since the surface is sized from it.
// A redraw is pending from the start so the first frame is drawn without
// waiting for a producer.
func NewState(g Geometry, layout Layout, metrics *telemetry.Metrics) *State {
	s := &State{
		pending:  true,
		geometry: g,
		maxWidth: g.Width,
		layout:   layout,
		metrics:  metrics,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// RequestRedraw marks a redraw as pending and wakes the draw loop.
// It never blocks beyond the short critical section and is idempotent:
// requests issued before the draw loop wakes collapse into one frame.
func (s *State) RequestRedraw() {
	s.mu.Lock()
	coalesced := s.pending
	s.pending = true
	s.cond.Signal()
	s.mu.Unlock()

	s.metrics.RedrawRequested(coalesced)
}

// WaitAndConsume blocks until a redraw is pending or the state is closed.
// It clears the pending flag and snapshots the frame in the same critical
// section. ok is false once the state is closed.
func (s *State) WaitAndConsume() (f Frame, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.pending && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return Frame{}, false
	}

	s.pending = false
	return Frame{Geometry: s.geometry, Layout: s.layout}, true
}

// SetWidth changes the strip width and requests a redraw in one critical
// section. The width is clamped to [0, initial width].
func (s *State) SetWidth(width int) {
	if width < 0 {
		width = 0
	}

	s.mu.Lock()
	if width > s.maxWidth {
		width = s.maxWidth
	}
	changed := width != s.geometry.Width
	if changed {
		s.geometry.Width = width
		s.pending = true
		s.cond.Signal()
	}
	s.mu.Unlock()

	if changed {
		s.metrics.RedrawRequested(false)
	}
}

// Close moves the state to Closed and wakes the draw loop so it can exit.
// Calling Close more than once is harmless.
func (s *State) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Closed reports whether Close has been called.
func (s *State) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Geometry returns the current geometry.
func (s *State) Geometry() Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry
}

// Pending reports whether a redraw is waiting to be consumed.
func (s *State) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Layout returns the module lists.
func (s *State) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}
