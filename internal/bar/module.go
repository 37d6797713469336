package bar

import (
	"context"

	"github.com/1broseidon/hlbar/internal/render"
)

// Module is one unit of strip content.
//
// Render draws the module onto c and returns the new cursor: the position
// right after the module for left-flowing modules, right before it for
// right-flowing ones. Global modules receive cursor 0 and may ignore it.
// A module returns an error, and leaves the cursor where it was, when its
// data source failed for this frame; the draw loop then skips it.
type Module interface {
	Name() string
	Render(c render.Canvas, g Geometry, cursor int) (int, error)
}

// Signaler is the producer-side view of the redraw coordinator.
type Signaler interface {
	RequestRedraw()
}

// Producer is implemented by modules that know when they changed.
//
// Produce runs for the lifetime of the bar and calls sig.RequestRedraw
// whenever new content is available. It returns when ctx is cancelled.
// An error means the producer's external dependency could not be started.
type Producer interface {
	Produce(ctx context.Context, sig Signaler) error
}

// Placement is a module's rendering group.
type Placement int

const (
	PlaceGlobal Placement = iota
	PlaceLeft
	PlaceRight
)

func (p Placement) String() string {
	switch p {
	case PlaceGlobal:
		return "global"
	case PlaceLeft:
		return "left"
	case PlaceRight:
		return "right"
	default:
		return "unknown"
	}
}

// Layout is the ordered module lists, one per placement.
type Layout struct {
	Global []Module
	Left   []Module
	Right  []Module
}

// All returns every module in render order.
func (l Layout) All() []Module {
	out := make([]Module, 0, len(l.Global)+len(l.Left)+len(l.Right))
	out = append(out, l.Global...)
	out = append(out, l.Left...)
	out = append(out, l.Right...)
	return out
}

// Producers returns the modules that implement Producer, in render order.
func (l Layout) Producers() []Module {
	var out []Module
	for _, m := range l.All() {
		if _, ok := m.(Producer); ok {
			out = append(out, m)
		}
	}
	return out
}
