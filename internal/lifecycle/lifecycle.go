// Package lifecycle supervises everything that runs while the bar is up: the
// draw loop, one producer per module, the tray helper, the control socket and
// the metrics endpoint, driven by the window's event stream.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/ipc"
	"github.com/1broseidon/hlbar/internal/telemetry"
	"github.com/1broseidon/hlbar/internal/tray"
)

// Options wires the collaborators of Run.
type Options struct {
	State   *bar.State
	Surface bar.Surface
	// Events is the window's event stream. Closing it shuts the bar down.
	Events <-chan bar.Event
	Gap    int

	// Tray, if set, runs the tray helper.
	Tray *tray.Options
	// ControlSocket, if set, is the path of the control socket. A QUIT
	// request shuts the bar down like a closed event stream.
	ControlSocket string
	// MetricsServer, if set, serves /metrics for the lifetime of the bar.
	MetricsServer *telemetry.Server

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Run starts every task and blocks until ctx is cancelled, the event stream
// ends, or a task fails. In every case the state is closed, the draw loop
// finishes its current frame and exits, and all producers are cancelled
// before Run returns. The first task error is returned.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := opts.State
	defer state.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bar.NewDrawLoop(state, opts.Surface, bar.DrawLoopConfig{
			Gap:     opts.Gap,
			Logger:  logger,
			Metrics: opts.Metrics,
		}).Run()
		return nil
	})

	// Closing the state is what wakes a draw loop blocked on the next frame.
	g.Go(func() error {
		<-gctx.Done()
		state.Close()
		return nil
	})

	for _, m := range state.Layout().Producers() {
		name := m.Name()
		producer := m.(bar.Producer)
		g.Go(func() error {
			logger.Debug("producer started", "module", name)
			if err := producer.Produce(gctx, state); err != nil {
				return fmt.Errorf("module %s: %w", name, err)
			}
			logger.Debug("producer stopped", "module", name)
			return nil
		})
	}

	if opts.Tray != nil {
		trayOpts := *opts.Tray
		if trayOpts.Logger == nil {
			trayOpts.Logger = logger
		}
		if trayOpts.Metrics == nil {
			trayOpts.Metrics = opts.Metrics
		}
		g.Go(func() error {
			if err := tray.Run(gctx, state, trayOpts); err != nil {
				return fmt.Errorf("tray: %w", err)
			}
			return nil
		})
	}

	if opts.ControlSocket != "" {
		srv := ipc.NewServer(opts.ControlSocket, state, cancel, logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	if opts.MetricsServer != nil {
		g.Go(func() error {
			return opts.MetricsServer.Run(gctx)
		})
	}

	g.Go(func() error {
		handleEvents(gctx, opts.Events, state, logger)
		cancel()
		return nil
	})

	return g.Wait()
}

func handleEvents(ctx context.Context, events <-chan bar.Event, sig bar.Signaler, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				logger.Info("window event stream ended")
				return
			}
			switch ev.Kind {
			case bar.EventExpose:
				sig.RequestRedraw()
			case bar.EventButtonPress:
				logger.Debug("button press", "button", ev.Button, "x", ev.X, "y", ev.Y)
			}
		}
	}
}
