package bar

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/hlbar/internal/render"
	"github.com/1broseidon/hlbar/internal/render/rendertest"
	"github.com/1broseidon/hlbar/internal/telemetry"
)

// fixedModule draws a box of a fixed width and reports the geometry it saw.
type fixedModule struct {
	name  string
	width int
	right bool
	err   error
	panic bool

	mu   sync.Mutex
	seen []Geometry
}

func (m *fixedModule) Name() string { return m.name }

func (m *fixedModule) Render(c render.Canvas, g Geometry, cursor int) (int, error) {
	m.mu.Lock()
	m.seen = append(m.seen, g)
	m.mu.Unlock()

	if m.panic {
		panic("boom")
	}
	if m.err != nil {
		return cursor, m.err
	}
	if m.right {
		c.FillRect(render.Rect{X: cursor - m.width, Width: m.width, Height: g.Height}, 0)
		return cursor - m.width, nil
	}
	c.FillRect(render.Rect{X: cursor, Width: m.width, Height: g.Height}, 0)
	return cursor + m.width, nil
}

func (m *fixedModule) geometries() []Geometry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Geometry(nil), m.seen...)
}

func left(name string, w int) *fixedModule  { return &fixedModule{name: name, width: w} }
func right(name string, w int) *fixedModule { return &fixedModule{name: name, width: w, right: true} }

var testGeometry = Geometry{X: 0, Y: 0, Width: 1200, Height: 20, Monitor: 0}

func TestRenderFrameEmptyGroupsLeaveCursorsUnchanged(t *testing.T) {
	l, r := RenderFrame(rendertest.NewRecorder(), Frame{Geometry: testGeometry}, 5, nil)
	assert.Equal(t, 0, l)
	assert.Equal(t, testGeometry.Width, r)
}

func TestRenderFrameLeftFlowAddsGapBetweenModules(t *testing.T) {
	const gap = 4
	f := Frame{Geometry: testGeometry, Layout: Layout{
		Left: []Module{left("a", 10), left("b", 20), left("c", 30)},
	}}

	l, r := RenderFrame(rendertest.NewRecorder(), f, gap, nil)
	assert.Equal(t, 10+20+30+2*gap, l)
	assert.Equal(t, testGeometry.Width, r)
}

func TestRenderFrameRightFlowSubtractsGap(t *testing.T) {
	const gap = 3
	f := Frame{Geometry: testGeometry, Layout: Layout{
		Right: []Module{right("clock", 15), right("battery", 25)},
	}}

	_, r := RenderFrame(rendertest.NewRecorder(), f, gap, nil)
	assert.Equal(t, testGeometry.Width-15-25-gap, r)
}

func TestRenderFrameGlobalFirstWithZeroCursor(t *testing.T) {
	rec := rendertest.NewRecorder()
	bg := left("bg", 999)
	f := Frame{Geometry: testGeometry, Layout: Layout{
		Global: []Module{bg},
		Left:   []Module{left("tags", 10)},
	}}

	RenderFrame(rec, f, 0, nil)
	ops := rec.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, 0, ops[0].Rect.X)
	assert.Equal(t, 999, ops[0].Rect.Width, "global module rendered first")
}

func TestRenderFrameSkipsFailingModules(t *testing.T) {
	const gap = 2
	broken := &fixedModule{name: "broken", err: errors.New("sensor gone")}
	panicky := &fixedModule{name: "panicky", panic: true}
	f := Frame{Geometry: testGeometry, Layout: Layout{
		Left: []Module{broken, left("a", 10), panicky, left("b", 20)},
	}}

	var failed []string
	l, _ := RenderFrame(rendertest.NewRecorder(), f, gap, func(m Module, err error) {
		require.Error(t, err)
		failed = append(failed, m.Name())
	})

	assert.Equal(t, []string{"broken", "panicky"}, failed)
	assert.Equal(t, 10+gap+20, l, "skipped modules contribute neither width nor gap")
}

func TestRequestRedrawCoalesces(t *testing.T) {
	s := NewState(testGeometry, Layout{}, nil)
	_, ok := s.WaitAndConsume() // initial frame
	require.True(t, ok)
	require.False(t, s.Pending())

	for i := 0; i < 10; i++ {
		s.RequestRedraw()
	}
	_, ok = s.WaitAndConsume()
	require.True(t, ok)
	assert.False(t, s.Pending(), "ten requests are consumed by one wait")
}

func TestRequestRedrawMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := telemetry.NewMetrics(reg)
	require.NoError(t, err)

	s := NewState(testGeometry, Layout{}, m)
	s.RequestRedraw() // coalesces with the initial pending frame
	_, ok := s.WaitAndConsume()
	require.True(t, ok)
	s.RequestRedraw()

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		if len(f.GetMetric()) > 0 && f.GetMetric()[0].GetCounter() != nil {
			values[f.GetName()] = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, values["hlbar_redraw_requests_total"])
	assert.Equal(t, 1.0, values["hlbar_redraw_requests_coalesced_total"])
}

func TestConcurrentProducersNeverLoseWakeups(t *testing.T) {
	s := NewState(testGeometry, Layout{}, nil)
	_, ok := s.WaitAndConsume()
	require.True(t, ok)

	const producers = 8
	const rounds = 200

	// Each round: every producer signals once, then the consumer must be
	// able to consume exactly one coalesced request without blocking forever.
	for round := 0; round < rounds; round++ {
		var wg sync.WaitGroup
		wg.Add(producers)
		for p := 0; p < producers; p++ {
			go func() {
				defer wg.Done()
				s.RequestRedraw()
			}()
		}
		wg.Wait()

		done := make(chan struct{})
		go func() {
			_, ok := s.WaitAndConsume()
			assert.True(t, ok)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("round %d: consumer did not observe pending redraw", round)
		}
		require.False(t, s.Pending(), "round %d: pending cleared by the consumer", round)
	}
}

func TestRequestAfterConsumeIsNeverLost(t *testing.T) {
	s := NewState(testGeometry, Layout{}, nil)
	_, _ = s.WaitAndConsume()

	var consumed atomic.Int64
	stop := make(chan struct{})
	go func() {
		for {
			if _, ok := s.WaitAndConsume(); !ok {
				close(stop)
				return
			}
			consumed.Add(1)
		}
	}()

	for i := 0; i < 50; i++ {
		before := consumed.Load()
		s.RequestRedraw()
		require.Eventually(t, func() bool { return consumed.Load() > before },
			2*time.Second, time.Millisecond, "request %d never consumed", i)
	}

	s.Close()
	select {
	case <-stop:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not exit after Close")
	}
}

func TestCloseWakesBlockedConsumer(t *testing.T) {
	s := NewState(testGeometry, Layout{}, nil)
	_, _ = s.WaitAndConsume()

	result := make(chan bool, 1)
	go func() {
		_, ok := s.WaitAndConsume()
		result <- ok
	}()

	// Give the consumer time to block.
	time.Sleep(20 * time.Millisecond)
	s.Close()

	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not wake the consumer")
	}
	assert.True(t, s.Closed())
}

func TestClosedWinsOverPendingRedraw(t *testing.T) {
	s := NewState(testGeometry, Layout{}, nil)
	s.RequestRedraw()
	s.Close()

	_, ok := s.WaitAndConsume()
	assert.False(t, ok, "a closed state never renders again")
}

func TestSetWidthIsSnapshottedWhole(t *testing.T) {
	s := NewState(testGeometry, Layout{}, nil)
	_, _ = s.WaitAndConsume()

	s.SetWidth(900)
	assert.True(t, s.Pending(), "width change requests a redraw")

	f, ok := s.WaitAndConsume()
	require.True(t, ok)
	assert.Equal(t, Geometry{X: 0, Y: 0, Width: 900, Height: 20, Monitor: 0}, f.Geometry)

	s.SetWidth(5000)
	assert.Equal(t, 1200, s.Geometry().Width, "clamped to the initial width")
	s.SetWidth(-4)
	assert.Equal(t, 0, s.Geometry().Width)
}

func TestSetWidthUnchangedDoesNotRedraw(t *testing.T) {
	s := NewState(testGeometry, Layout{}, nil)
	_, _ = s.WaitAndConsume()

	s.SetWidth(testGeometry.Width)
	assert.False(t, s.Pending())
}

type recordingSurface struct {
	*rendertest.Recorder

	mu        sync.Mutex
	published []Geometry
	flushes   int
}

func (s *recordingSurface) Publish(g Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, g)
	return nil
}

func (s *recordingSurface) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *recordingSurface) frames() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published), s.flushes
}

func TestDrawLoopRendersUntilClosed(t *testing.T) {
	tags := left("tags", 40)
	clock := right("clock", 60)
	s := NewState(testGeometry, Layout{Left: []Module{tags}, Right: []Module{clock}}, nil)
	surface := &recordingSurface{Recorder: rendertest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		NewDrawLoop(s, surface, DrawLoopConfig{Gap: 2}).Run()
		close(done)
	}()

	require.Eventually(t, func() bool {
		published, _ := surface.frames()
		return published == 1
	}, 2*time.Second, time.Millisecond, "initial frame is drawn")

	s.SetWidth(800)
	require.Eventually(t, func() bool {
		published, _ := surface.frames()
		return published == 2
	}, 2*time.Second, time.Millisecond)

	s.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("draw loop did not stop after Close")
	}

	published, flushes := surface.frames()
	assert.Equal(t, published, flushes, "every published frame is flushed")
	seen := clock.geometries()
	require.Len(t, seen, 2)
	assert.Equal(t, 1200, seen[0].Width)
	assert.Equal(t, 800, seen[1].Width)
}

func TestLayoutProducers(t *testing.T) {
	l := Layout{
		Global: []Module{left("bg", 0)},
		Left:   []Module{producingModule{fixedModule: left("tags", 1)}},
		Right:  []Module{right("static", 1)},
	}
	producers := l.Producers()
	require.Len(t, producers, 1)
	assert.Equal(t, "tags", producers[0].Name())
	assert.Len(t, l.All(), 3)
}

type producingModule struct {
	*fixedModule
}

func (producingModule) Produce(ctx context.Context, sig Signaler) error {
	<-ctx.Done()
	return nil
}
