package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/generator"
	"github.com/1broseidon/hlbar/internal/render"
)

// Battery glyph dimensions in pixels, except symbolHeight which is a fraction
// of the strip height.
const (
	symbolHeight    = 0.6
	symbolWidth     = 25
	symbolMargin    = 3
	symbolConnector = 3
	symbolInset     = 3
)

var errNoBattery = errors.New("no battery could be read")

// Battery draws a gauge and a percentage for each configured power supply.
// It is right-aligned only.
type Battery struct {
	cfg      config.BatteryConfig
	text     render.Color
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

func NewBattery(cfg config.BatteryConfig, text render.Color, opts Options) *Battery {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Battery{cfg: cfg, text: text, logger: logger, readFile: os.ReadFile}
}

func (b *Battery) Name() string { return "battery" }

// Capacity reads a power supply's charge in percent, clamped to [0, 100];
// sysfs occasionally reports more than 100.
func (b *Battery) Capacity(dir string) (int, error) {
	data, err := b.readFile(filepath.Join(dir, "capacity"))
	if err != nil {
		return 0, err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	pct, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("parse capacity of %s: %w", dir, err)
	}
	return min(max(pct, 0), 100), nil
}

func (b *Battery) Render(c render.Canvas, g bar.Geometry, cursor int) (int, error) {
	align := cursor
	drawn := 0
	for _, dir := range b.cfg.Paths {
		pct, err := b.Capacity(dir)
		if err != nil {
			b.logger.Debug("battery skipped", "path", dir, "error", err)
			continue
		}

		margin := b.cfg.Margin
		if drawn > 0 {
			margin /= 2
		}
		next, err := b.drawOne(c, g.Height, align, margin, pct)
		if err != nil {
			return cursor, err
		}
		align = next
		drawn++
	}
	if drawn == 0 {
		return cursor, errNoBattery
	}
	return align, nil
}

func (b *Battery) drawOne(c render.Canvas, height, align, margin, pct int) (int, error) {
	p := float64(pct) / 100
	h := float64(height)
	symH := int(math.Round(symbolHeight * h))
	symTop := (height - symH) / 2
	symLeft := align - (symbolWidth + 2*symbolMargin) - margin

	c.FillRect(render.Rect{X: symLeft, Y: 0, Width: symbolWidth + 2*symbolMargin + margin, Height: height}, b.cfg.Background)

	body := render.Rect{X: align - (symbolWidth + symbolMargin) - margin, Y: symTop, Width: symbolWidth, Height: symH}
	c.FillRect(body, 0x000000)
	connH := symH / 2
	c.FillRect(render.Rect{X: align - symbolMargin - margin, Y: (height - connH) / 2, Width: symbolConnector, Height: connH}, 0x000000)

	fill := int(math.Round(float64(symbolWidth-2*symbolInset) * p))
	if fill > 0 {
		c.FillRect(render.Rect{
			X:      body.X + symbolInset,
			Y:      body.Y + symbolInset,
			Width:  fill,
			Height: symH - 2*symbolInset,
		}, render.Fade(p))
	}

	return render.TextBox{
		Text:       fmt.Sprintf("%d%%", pct),
		Height:     height,
		Foreground: b.text,
		Background: b.cfg.Background,
		Align:      render.AlignRight,
		Anchor:     symLeft,
		Margin:     b.cfg.Margin,
	}.Draw(c)
}

func (b *Battery) Produce(ctx context.Context, sig bar.Signaler) error {
	return generator.Ticker(ctx, b.cfg.Interval, sig)
}
