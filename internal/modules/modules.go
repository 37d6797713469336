// Package modules implements the strip's content: the background fill, the
// herbstluftwm tag list, a clock, battery gauges, system load and a file
// display.
package modules

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/herbst"
	"github.com/1broseidon/hlbar/internal/telemetry"
)

// Options carries the dependencies shared by all modules.
type Options struct {
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Build constructs the layout named by cfg.Modules.
func Build(cfg *config.Config, opts Options) (bar.Layout, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var (
		layout bar.Layout
		err    error
	)
	if layout.Global, err = buildGroup(cfg, cfg.Modules.Global, bar.PlaceGlobal, opts); err != nil {
		return bar.Layout{}, err
	}
	if layout.Left, err = buildGroup(cfg, cfg.Modules.Left, bar.PlaceLeft, opts); err != nil {
		return bar.Layout{}, err
	}
	if layout.Right, err = buildGroup(cfg, cfg.Modules.Right, bar.PlaceRight, opts); err != nil {
		return bar.Layout{}, err
	}
	return layout, nil
}

func buildGroup(cfg *config.Config, names []string, place bar.Placement, opts Options) ([]bar.Module, error) {
	out := make([]bar.Module, 0, len(names))
	for _, name := range names {
		m, err := newModule(cfg, name, place, opts)
		if err != nil {
			return nil, fmt.Errorf("modules.%s: %w", place, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func newModule(cfg *config.Config, name string, place bar.Placement, opts Options) (bar.Module, error) {
	align := alignFor(place)
	switch name {
	case config.ModuleBackground:
		return NewBackground(cfg.Colors.Background), nil
	case config.ModuleTags:
		if place == bar.PlaceRight {
			return nil, fmt.Errorf("%s can only be placed left", name)
		}
		return NewTags(herbst.NewClient(cfg.Tags.Command), cfg.Tags, cfg.Colors.Text, opts), nil
	case config.ModuleClock:
		return NewClock(cfg.Clock, cfg.Colors.Text, align), nil
	case config.ModuleBattery:
		if place != bar.PlaceRight {
			return nil, fmt.Errorf("%s can only be placed right", name)
		}
		return NewBattery(cfg.Battery, cfg.Colors.Text, opts), nil
	case config.ModuleLoad:
		return NewLoad(cfg.Load, cfg.Colors.Text, align, nil), nil
	case config.ModuleFile:
		return NewFile(cfg.File, cfg.Colors.Text, align, opts), nil
	default:
		return nil, fmt.Errorf("unknown module %q", name)
	}
}
