// Package tray runs the stalonetray helper next to the strip and shrinks the
// strip to leave room for it.
package tray

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/generator"
	"github.com/1broseidon/hlbar/internal/telemetry"
)

// stalonetray logs its window geometry as "geometry: WxH+X+Y".
var geometryRE = regexp.MustCompile(`geometry: (\d+)x(\d+)\+(-?\d+)\+(-?\d+)`)

// Geometry is a tray window position as reported by the helper.
type Geometry struct {
	Width  int
	Height int
	X      int
	Y      int
}

// ParseGeometry extracts the last geometry announcement from a log line.
func ParseGeometry(line string) (Geometry, bool) {
	all := geometryRE.FindAllStringSubmatch(line, -1)
	if len(all) == 0 {
		return Geometry{}, false
	}
	m := all[len(all)-1]

	var g Geometry
	var err error
	for i, dst := range []*int{&g.Width, &g.Height, &g.X, &g.Y} {
		if *dst, err = strconv.Atoi(m[i+1]); err != nil {
			return Geometry{}, false
		}
	}
	return g, true
}

// Args builds the helper command line for a strip of the given geometry.
func Args(cfg config.TrayConfig, strip bar.Geometry) []string {
	icon := cfg.IconSize
	if icon <= 0 {
		icon = strip.Height
	}
	return []string{
		cfg.Command,
		"--icon-size", strconv.Itoa(icon),
		"--background", cfg.Background.String(),
		"--grow-gravity", "E",
		"--geometry", "1x1-" + strconv.Itoa(cfg.Offset) + "+" + strconv.Itoa(strip.Y),
		"--kludges", "force_icons_size",
		"--log-level", "info",
	}
}

// Resizer is the part of the shared state the tray writes to.
type Resizer interface {
	Geometry() bar.Geometry
	SetWidth(width int)
}

// WidthFor returns the strip width that ends where the tray begins.
func WidthFor(strip bar.Geometry, tray Geometry) int {
	return tray.X - strip.X
}

// Options configures Run.
type Options struct {
	Config  config.TrayConfig
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	// Argv overrides the helper command line built by Args.
	Argv []string
}

// Run starts the helper and resizes the strip on every geometry report until
// ctx is cancelled. The helper is restarted when it exits.
func Run(ctx context.Context, state Resizer, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	strip := state.Geometry()
	argv := opts.Argv
	if len(argv) == 0 {
		argv = Args(opts.Config, strip)
	}

	return generator.Stream(ctx, generator.StreamConfig{
		Name:        "tray",
		Argv:        argv,
		MergeStderr: true,
		OnLine: func(line string) {
			g, ok := ParseGeometry(line)
			if !ok {
				return
			}
			width := WidthFor(strip, g)
			logger.Debug("tray geometry", "tray_x", g.X, "tray_width", g.Width, "strip_width", width)
			state.SetWidth(width)
		},
		Logger:  logger,
		Metrics: opts.Metrics,
	})
}
