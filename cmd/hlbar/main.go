package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
	"github.com/1broseidon/hlbar/internal/lifecycle"
	"github.com/1broseidon/hlbar/internal/modules"
	"github.com/1broseidon/hlbar/internal/runtimepath"
	"github.com/1broseidon/hlbar/internal/telemetry"
	"github.com/1broseidon/hlbar/internal/tray"
	"github.com/1broseidon/hlbar/internal/x11"
)

type rootOptions struct {
	configPath  string
	logLevel    string
	metricsAddr string
	display     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "hlbar X Y WIDTH HEIGHT MONITOR",
		Short: "Status bar for herbstluftwm",
		Long: `hlbar draws a status strip at the given position and size on one
herbstluftwm monitor. It shows the monitor's tags, a clock and other
configurable modules, and can embed a system tray helper.

Negative coordinates must follow "--", for example:
  hlbar -- -1920 0 1920 16 1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			_, err := parseBarArgs(args)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parseBarArgs(args)
			if err != nil {
				return err
			}
			return runBar(cmd.Context(), opts, g)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.config/hlbar/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warning, error (overrides config)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides config)")
	flags.StringVar(&opts.display, "display", "", "X display to connect to (default: $DISPLAY)")

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newMonitorsCmd())
	cmd.AddCommand(newCtlCmd())
	return cmd
}

// parseBarArgs reads the five positional arguments: X Y WIDTH HEIGHT MONITOR.
func parseBarArgs(args []string) (bar.Geometry, error) {
	if len(args) != 5 {
		return bar.Geometry{}, fmt.Errorf("expected 5 arguments (X Y WIDTH HEIGHT MONITOR), got %d", len(args))
	}
	names := []string{"X", "Y", "WIDTH", "HEIGHT", "MONITOR"}
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return bar.Geometry{}, fmt.Errorf("invalid %s %q: not an integer", names[i], arg)
		}
		values[i] = v
	}
	g := bar.Geometry{X: values[0], Y: values[1], Width: values[2], Height: values[3], Monitor: values[4]}
	switch {
	case g.Width <= 0:
		return bar.Geometry{}, fmt.Errorf("invalid WIDTH %d: must be positive", g.Width)
	case g.Height <= 0:
		return bar.Geometry{}, fmt.Errorf("invalid HEIGHT %d: must be positive", g.Height)
	case g.Monitor < 0:
		return bar.Geometry{}, fmt.Errorf("invalid MONITOR %d: must not be negative", g.Monitor)
	}
	return g, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// newLogger logs text when stderr is a terminal and JSON otherwise.
func newLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}

func runBar(ctx context.Context, opts *rootOptions, g bar.Geometry) error {
	res, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg := res.Config

	levelName := cfg.LogLevel
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}
	level, err := parseLevel(levelName)
	if err != nil {
		return err
	}
	logger := newLogger(level).With("monitor", g.Monitor)
	slog.SetDefault(logger)

	lock, err := runtimepath.Lock(g.Monitor)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	if res.File != "" {
		logger.Info("loaded config", "path", res.File)
	}

	metricsAddr := cfg.Metrics.Listen
	if opts.metricsAddr != "" {
		metricsAddr = opts.metricsAddr
	}
	var (
		metrics   *telemetry.Metrics
		metricSrv *telemetry.Server
	)
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics, err = telemetry.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		metricSrv = telemetry.NewServer(metricsAddr, reg, logger)
	}

	layout, err := modules.Build(cfg, modules.Options{Logger: logger, Metrics: metrics})
	if err != nil {
		return err
	}

	conn, err := x11.NewConnection(opts.display)
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	font, fontPath, err := x11.LoadFont(cfg.FontCandidates())
	if err != nil {
		return err
	}
	logger.Debug("loaded font", "path", fontPath, "size", cfg.Font.Size)

	window, err := conn.CreateWindow(g, cfg.Colors.Background)
	if err != nil {
		return err
	}
	defer window.Destroy()

	surface, err := x11.NewSurface(conn, window, g, font, cfg.Font.Size)
	if err != nil {
		return err
	}
	defer surface.Destroy()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	socket, err := runtimepath.SocketPath(g.Monitor)
	if err != nil {
		return err
	}

	state := bar.NewState(g, layout, metrics)
	runOpts := lifecycle.Options{
		State:         state,
		Surface:       surface,
		Events:        window.Events(ctx, logger),
		Gap:           cfg.Gap,
		ControlSocket: socket,
		MetricsServer: metricSrv,
		Logger:        logger,
		Metrics:       metrics,
	}
	if cfg.Tray.Enabled {
		runOpts.Tray = &tray.Options{Config: cfg.Tray, Logger: logger, Metrics: metrics}
	}

	logger.Info("bar started", "geometry", g.String())
	err = lifecycle.Run(ctx, runOpts)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("bar stopped")
	return nil
}

func main() {
	ctx := context.Background()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "hlbar:", err)
		os.Exit(1)
	}
}
