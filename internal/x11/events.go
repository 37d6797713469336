package x11

import (
	"context"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/hlbar/internal/bar"
)

// Events reads the connection's event stream and forwards the events that
// concern w. The channel is closed when the connection closes or ctx is
// cancelled. A closed connection marks the Connection as lost.
func (w *Window) Events(ctx context.Context, logger *slog.Logger) <-chan bar.Event {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(chan bar.Event, 16)
	conn := w.conn.XUtil.Conn()

	go func() {
		defer close(out)
		for {
			ev, err := conn.WaitForEvent()
			if ev == nil && err == nil {
				w.conn.lost.Store(true)
				logger.Debug("x connection closed")
				return
			}
			if err != nil {
				logger.Debug("x error", "error", err)
				continue
			}
			translated, ok := w.translate(ev)
			if !ok {
				continue
			}
			select {
			case out <- translated:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (w *Window) translate(ev xgb.Event) (bar.Event, bool) {
	switch e := ev.(type) {
	case xproto.ExposeEvent:
		// Only the last expose of a series.
		if e.Window == w.ID() && e.Count == 0 {
			return bar.Event{Kind: bar.EventExpose}, true
		}
	case xproto.MapNotifyEvent:
		if e.Window == w.ID() {
			return bar.Event{Kind: bar.EventExpose}, true
		}
	case xproto.ButtonPressEvent:
		if e.Event == w.ID() {
			return bar.Event{
				Kind:   bar.EventButtonPress,
				X:      int(e.EventX),
				Y:      int(e.EventY),
				Button: int(e.Detail),
			}, true
		}
	}
	return bar.Event{}, false
}
