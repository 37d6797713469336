package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/hlbar/internal/render"
)

// Module names accepted in the modules lists.
const (
	ModuleBackground = "background"
	ModuleTags       = "tags"
	ModuleClock      = "clock"
	ModuleBattery    = "battery"
	ModuleLoad       = "load"
	ModuleFile       = "file"
)

// DefaultFontPaths are tried in order when font.path is empty.
var DefaultFontPaths = []string{
	"/usr/share/fonts/TTF/Inconsolata-Bold.ttf",
	"/usr/share/fonts/truetype/inconsolata/Inconsolata-Bold.ttf",
	"/usr/share/fonts/google-inconsolata/Inconsolata-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSansMono-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSansMono-Bold.ttf",
}

// FontConfig selects the TrueType font used for all text.
type FontConfig struct {
	Path string  `yaml:"path,omitempty"`
	Size float64 `yaml:"size"`
}

// ColorsConfig holds the colours shared by every module.
type ColorsConfig struct {
	Background render.Color `yaml:"background"`
	Text       render.Color `yaml:"text"`
}

// ModulesConfig lists module names per placement, in render order.
type ModulesConfig struct {
	Global []string `yaml:"global"`
	Left   []string `yaml:"left"`
	Right  []string `yaml:"right"`
}

// TagColors maps every tag state to its box colour.
type TagColors struct {
	Empty                 render.Color `yaml:"empty"`
	NonEmpty              render.Color `yaml:"non_empty"`
	ThisMonitorUnfocused  render.Color `yaml:"this_monitor_unfocused"`
	ThisMonitorFocused    render.Color `yaml:"this_monitor_focused"`
	OtherMonitorUnfocused render.Color `yaml:"other_monitor_unfocused"`
	OtherMonitorFocused   render.Color `yaml:"other_monitor_focused"`
	Urgent                render.Color `yaml:"urgent"`
}

// TagsConfig configures the herbstluftwm tag list.
type TagsConfig struct {
	// Command is the herbstclient binary.
	Command string `yaml:"command"`
	Margin  int    `yaml:"margin"`
	Spacing int    `yaml:"spacing"`
	// FocusSize is the monitor focus square's size as a fraction of the
	// strip height.
	FocusSize        float64      `yaml:"focus_size"`
	Colors           TagColors    `yaml:"colors"`
	MonitorFocused   render.Color `yaml:"monitor_focused"`
	MonitorUnfocused render.Color `yaml:"monitor_unfocused"`
}

// ClockConfig configures the clock.
type ClockConfig struct {
	// Format is a Go time layout.
	Format     string        `yaml:"format"`
	Interval   time.Duration `yaml:"interval"`
	Margin     int           `yaml:"margin"`
	Background render.Color  `yaml:"background"`
}

// BatteryConfig configures the battery gauges.
type BatteryConfig struct {
	// Paths are sysfs power supply directories holding a capacity file.
	Paths      []string      `yaml:"paths"`
	Interval   time.Duration `yaml:"interval"`
	Margin     int           `yaml:"margin"`
	Background render.Color  `yaml:"background"`
}

// LoadConfig configures the CPU and memory load module.
type LoadConfig struct {
	Interval   time.Duration `yaml:"interval"`
	Margin     int           `yaml:"margin"`
	Background render.Color  `yaml:"background"`
}

// FileConfig configures the module showing the first line of a file.
type FileConfig struct {
	Path       string       `yaml:"path"`
	Margin     int          `yaml:"margin"`
	Background render.Color `yaml:"background"`
}

// TrayConfig configures the stalonetray helper.
type TrayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
	// Offset is the tray's distance from the right screen edge.
	Offset int `yaml:"offset"`
	// IconSize is the icon size in pixels. Zero means the strip height.
	IconSize   int          `yaml:"icon_size"`
	Background render.Color `yaml:"background"`
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on. Empty disables it.
	Listen string `yaml:"listen,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Gap      int           `yaml:"gap"`
	Font     FontConfig    `yaml:"font"`
	Colors   ColorsConfig  `yaml:"colors"`
	Modules  ModulesConfig `yaml:"modules"`
	Tags     TagsConfig    `yaml:"tags"`
	Clock    ClockConfig   `yaml:"clock"`
	Battery  BatteryConfig `yaml:"battery"`
	Load     LoadConfig    `yaml:"load"`
	File     FileConfig    `yaml:"file"`
	Tray     TrayConfig    `yaml:"tray"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Gap:      0,
		Font:     FontConfig{Size: 11},
		Colors: ColorsConfig{
			Background: 0x333333,
			Text:       0xdfdfdf,
		},
		Modules: ModulesConfig{
			Global: []string{ModuleBackground},
			Left:   []string{ModuleTags},
			Right:  []string{ModuleClock},
		},
		Tags: TagsConfig{
			Command:   "herbstclient",
			Margin:    8,
			Spacing:   0,
			FocusSize: 0.5,
			Colors: TagColors{
				Empty:                 0x606060,
				NonEmpty:              0x7e2d71,
				ThisMonitorUnfocused:  0x2399d7,
				ThisMonitorFocused:    0x2399d7,
				OtherMonitorUnfocused: 0x308b55,
				OtherMonitorFocused:   0x308b55,
				Urgent:                0xff0000,
			},
			MonitorFocused:   0x2399d7,
			MonitorUnfocused: 0xdfdfdf,
		},
		Clock: ClockConfig{
			Format:     "02.01.2006 [15:04:05]",
			Interval:   500 * time.Millisecond,
			Margin:     15,
			Background: 0x606060,
		},
		Battery: BatteryConfig{
			Paths:      []string{"/sys/class/power_supply/BAT0"},
			Interval:   30 * time.Second,
			Margin:     15,
			Background: 0x606060,
		},
		Load: LoadConfig{
			Interval:   2 * time.Second,
			Margin:     15,
			Background: 0x606060,
		},
		File: FileConfig{
			Margin:     15,
			Background: 0x606060,
		},
		Tray: TrayConfig{
			Enabled:    false,
			Command:    "stalonetray",
			Background: 0x333333,
		},
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Gap < 0 {
		return &ValidationError{Path: "gap", Err: fmt.Errorf("gap must be >= 0")}
	}
	if c.Font.Size <= 0 {
		return &ValidationError{Path: "font.size", Err: fmt.Errorf("font size must be > 0")}
	}

	seen := map[string]string{}
	for _, group := range []struct {
		path  string
		names []string
	}{
		{"modules.global", c.Modules.Global},
		{"modules.left", c.Modules.Left},
		{"modules.right", c.Modules.Right},
	} {
		for _, name := range group.names {
			if !knownModule(name) {
				return &ValidationError{Path: group.path, Err: fmt.Errorf("unknown module %q", name)}
			}
			if prev, ok := seen[name]; ok {
				return &ValidationError{Path: group.path, Err: fmt.Errorf("module %q is already listed in %s", name, prev)}
			}
			seen[name] = group.path
		}
	}

	if c.uses(ModuleTags) {
		if strings.TrimSpace(c.Tags.Command) == "" {
			return &ValidationError{Path: "tags.command", Err: fmt.Errorf("tags.command is required")}
		}
		if c.Tags.Margin < 0 || c.Tags.Spacing < 0 {
			return &ValidationError{Path: "tags", Err: fmt.Errorf("margin and spacing must be >= 0")}
		}
		if c.Tags.FocusSize < 0 || c.Tags.FocusSize > 1 {
			return &ValidationError{Path: "tags.focus_size", Err: fmt.Errorf("focus_size must be between 0 and 1")}
		}
	}
	if c.uses(ModuleClock) {
		if c.Clock.Format == "" {
			return &ValidationError{Path: "clock.format", Err: fmt.Errorf("clock.format is required")}
		}
		if c.Clock.Interval <= 0 {
			return &ValidationError{Path: "clock.interval", Err: fmt.Errorf("interval must be > 0")}
		}
	}
	if c.uses(ModuleBattery) {
		if len(c.Battery.Paths) == 0 {
			return &ValidationError{Path: "battery.paths", Err: fmt.Errorf("at least one battery path is required")}
		}
		if c.Battery.Interval <= 0 {
			return &ValidationError{Path: "battery.interval", Err: fmt.Errorf("interval must be > 0")}
		}
	}
	if c.uses(ModuleLoad) && c.Load.Interval <= 0 {
		return &ValidationError{Path: "load.interval", Err: fmt.Errorf("interval must be > 0")}
	}
	if c.uses(ModuleFile) && strings.TrimSpace(c.File.Path) == "" {
		return &ValidationError{Path: "file.path", Err: fmt.Errorf("file.path is required when the file module is enabled")}
	}
	if c.Tray.Enabled {
		if strings.TrimSpace(c.Tray.Command) == "" {
			return &ValidationError{Path: "tray.command", Err: fmt.Errorf("tray.command is required when the tray is enabled")}
		}
		if c.Tray.Offset < 0 || c.Tray.IconSize < 0 {
			return &ValidationError{Path: "tray", Err: fmt.Errorf("offset and icon_size must be >= 0")}
		}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}
	return nil
}

func (c *Config) validationWarnings() []string {
	var warnings []string
	if len(c.Modules.Global)+len(c.Modules.Left)+len(c.Modules.Right) == 0 {
		warnings = append(warnings, "no modules configured; the bar will stay empty")
	}
	if c.Font.Path != "" {
		if _, err := os.Stat(c.Font.Path); err != nil {
			warnings = append(warnings, fmt.Sprintf("font.path %q is not readable: %v", c.Font.Path, err))
		}
	}
	return warnings
}

func (c *Config) uses(module string) bool {
	for _, names := range [][]string{c.Modules.Global, c.Modules.Left, c.Modules.Right} {
		for _, name := range names {
			if name == module {
				return true
			}
		}
	}
	return false
}

func knownModule(name string) bool {
	switch name {
	case ModuleBackground, ModuleTags, ModuleClock, ModuleBattery, ModuleLoad, ModuleFile:
		return true
	}
	return false
}

// FontCandidates returns the font files to try, configured path first.
func (c *Config) FontCandidates() []string {
	if c.Font.Path != "" {
		return []string{c.Font.Path}
	}
	return DefaultFontPaths
}
