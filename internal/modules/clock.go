package modules

import (
	"context"
	"time"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/generator"
	"github.com/1broseidon/hlbar/internal/render"
)

// Clock shows the current time.
type Clock struct {
	cfg   config.ClockConfig
	text  render.Color
	align render.Alignment
	now   func() time.Time
}

func NewClock(cfg config.ClockConfig, text render.Color, align render.Alignment) *Clock {
	return &Clock{cfg: cfg, text: text, align: align, now: time.Now}
}

func (k *Clock) Name() string { return "clock" }

func (k *Clock) Render(c render.Canvas, g bar.Geometry, cursor int) (int, error) {
	return render.TextBox{
		Text:       k.now().Format(k.cfg.Format),
		Height:     g.Height,
		Foreground: k.text,
		Background: k.cfg.Background,
		Align:      k.align,
		Anchor:     cursor,
		Margin:     k.cfg.Margin,
	}.Draw(c)
}

func (k *Clock) Produce(ctx context.Context, sig bar.Signaler) error {
	return generator.Ticker(ctx, k.cfg.Interval, sig)
}
