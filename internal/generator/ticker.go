// Package generator holds the background activities that tell the draw loop
// a module's content changed: a fixed timer, a subprocess line stream and a
// file watch.
package generator

import (
	"context"
	"errors"
	"time"

	"github.com/1broseidon/hlbar/internal/bar"
)

// ErrSpawn marks a generator whose external dependency could not be started.
var ErrSpawn = errors.New("generator failed to start")

// Ticker requests a redraw every interval until ctx is cancelled.
//
// Each wait starts after the previous signal, so the schedule drifts by the
// time spent signalling. That is fine for a human-facing clock.
func Ticker(ctx context.Context, interval time.Duration, sig bar.Signaler) error {
	if interval <= 0 {
		return errors.New("ticker interval must be positive")
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		sig.RequestRedraw()
		timer.Reset(interval)
	}
}
