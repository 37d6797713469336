package bar

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/hlbar/internal/render"
	"github.com/1broseidon/hlbar/internal/telemetry"
)

// Surface is the off-screen frame buffer the draw loop renders into.
type Surface interface {
	render.Canvas
	// Publish copies the rendered frame onto the visible window.
	Publish(g Geometry) error
	// Flush pushes pending requests to the display server.
	Flush() error
}

// RenderFrame draws every module of f onto c and returns the final left and
// right cursors.
//
// Global modules are drawn first with cursor 0. Left modules follow in list
// order starting at 0, right modules in list order starting at the frame's
// right edge; gap pixels separate successive modules of the same group.
// A module that fails is skipped: the cursor stays where it was and onErr,
// if set, is told about it.
func RenderFrame(c render.Canvas, f Frame, gap int, onErr func(Module, error)) (left, right int) {
	for _, m := range f.Layout.Global {
		if _, err := renderModule(c, m, f.Geometry, 0); err != nil && onErr != nil {
			onErr(m, err)
		}
	}

	left = flow(c, f.Layout.Left, f.Geometry, 0, gap, onErr)
	right = flow(c, f.Layout.Right, f.Geometry, f.Geometry.Width, -gap, onErr)
	return left, right
}

func flow(c render.Canvas, modules []Module, g Geometry, cursor, step int, onErr func(Module, error)) int {
	drawn := false
	for _, m := range modules {
		start := cursor
		if drawn {
			start += step
		}
		next, err := renderModule(c, m, g, start)
		if err != nil {
			if onErr != nil {
				onErr(m, err)
			}
			continue
		}
		cursor = next
		drawn = true
	}
	return cursor
}

func renderModule(c render.Canvas, m Module, g Geometry, cursor int) (next int, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = cursor, fmt.Errorf("render panic: %v", r)
		}
	}()
	return m.Render(c, g, cursor)
}

// DrawLoopConfig holds the draw loop's settings.
type DrawLoopConfig struct {
	// Gap is the spacing in pixels between successive modules.
	Gap     int
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// DrawLoop is the single consumer of redraw requests.
type DrawLoop struct {
	state   *State
	surface Surface
	gap     int
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewDrawLoop creates a draw loop rendering state onto surface.
func NewDrawLoop(state *State, surface Surface, cfg DrawLoopConfig) *DrawLoop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DrawLoop{
		state:   state,
		surface: surface,
		gap:     cfg.Gap,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Run draws a frame for every consumed redraw request. It returns when the
// state is closed.
func (d *DrawLoop) Run() {
	d.logger.Debug("draw loop started")
	defer d.logger.Debug("draw loop stopped")

	for {
		frame, ok := d.state.WaitAndConsume()
		if !ok {
			return
		}
		d.draw(frame)
	}
}

func (d *DrawLoop) draw(f Frame) {
	start := time.Now()

	RenderFrame(d.surface, f, d.gap, func(m Module, err error) {
		d.logger.Debug("module skipped", "module", m.Name(), "error", err)
		d.metrics.ModuleFailed(m.Name())
	})

	if err := d.surface.Publish(f.Geometry); err != nil {
		d.logger.Warn("publish frame failed", "error", err)
		return
	}
	if err := d.surface.Flush(); err != nil {
		d.logger.Warn("flush failed", "error", err)
		return
	}
	d.metrics.FrameRendered(time.Since(start))
}
