package modules

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/generator"
	"github.com/1broseidon/hlbar/internal/herbst"
	"github.com/1broseidon/hlbar/internal/render"
	"github.com/1broseidon/hlbar/internal/telemetry"
)

const tagQueryTimeout = 2 * time.Second

// TagSource answers tag status queries.
type TagSource interface {
	TagStatus(ctx context.Context, monitor int) ([]herbst.Tag, error)
	IdleArgs() []string
}

// Tags draws the monitor focus square followed by one box per tag.
type Tags struct {
	source  TagSource
	cfg     config.TagsConfig
	text    render.Color
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

func NewTags(source TagSource, cfg config.TagsConfig, text render.Color, opts Options) *Tags {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tags{
		source:  source,
		cfg:     cfg,
		text:    text,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

func (t *Tags) Name() string { return "tags" }

func (t *Tags) Render(c render.Canvas, g bar.Geometry, cursor int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tagQueryTimeout)
	defer cancel()

	tags, err := t.source.TagStatus(ctx, g.Monitor)
	if err != nil {
		return cursor, err
	}

	focus := t.cfg.MonitorUnfocused
	if herbst.AnyFocused(tags) {
		focus = t.cfg.MonitorFocused
	}
	h := float64(g.Height)
	margin := int(math.Round(0.5 * (h - h*t.cfg.FocusSize)))
	side := g.Height - 2*margin
	c.FillRect(render.Rect{X: cursor + margin, Y: margin, Width: side, Height: side}, focus)

	x := cursor + g.Height
	for _, tag := range tags {
		box := render.TextBox{
			Text:       tag.Name,
			Height:     g.Height,
			Foreground: t.text,
			Background: t.color(tag.State),
			Align:      render.AlignLeft,
			Anchor:     x,
			Margin:     t.cfg.Margin,
		}
		next, err := box.Draw(c)
		if err != nil {
			return cursor, err
		}
		x = next + t.cfg.Spacing
	}
	return x, nil
}

func (t *Tags) color(s herbst.TagState) render.Color {
	colors := t.cfg.Colors
	switch s {
	case herbst.TagNonEmpty:
		return colors.NonEmpty
	case herbst.TagThisMonitorUnfocused:
		return colors.ThisMonitorUnfocused
	case herbst.TagThisMonitorFocused:
		return colors.ThisMonitorFocused
	case herbst.TagOtherMonitorUnfocused:
		return colors.OtherMonitorUnfocused
	case herbst.TagOtherMonitorFocused:
		return colors.OtherMonitorFocused
	case herbst.TagUrgent:
		return colors.Urgent
	default:
		return colors.Empty
	}
}

// Produce follows herbstclient's idle stream and requests a redraw for every
// tag change.
func (t *Tags) Produce(ctx context.Context, sig bar.Signaler) error {
	return generator.Stream(ctx, generator.StreamConfig{
		Name:    t.Name(),
		Argv:    t.source.IdleArgs(),
		OnLine:  func(string) { sig.RequestRedraw() },
		Logger:  t.logger,
		Metrics: t.metrics,
	})
}
