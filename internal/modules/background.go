package modules

import (
	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/render"
)

// Background fills the whole surface. It has no generator.
type Background struct {
	color render.Color
}

func NewBackground(c render.Color) *Background {
	return &Background{color: c}
}

func (b *Background) Name() string { return "background" }

func (b *Background) Render(c render.Canvas, _ bar.Geometry, cursor int) (int, error) {
	c.Paint(b.color)
	return cursor, nil
}

func alignFor(place bar.Placement) render.Alignment {
	if place == bar.PlaceRight {
		return render.AlignRight
	}
	return render.AlignLeft
}
