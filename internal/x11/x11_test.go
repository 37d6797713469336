package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/hlbar/internal/bar"
)

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Y: 0, Width: 2560, Height: 1440},
	}
	assert.Equal(t, 0, MonitorAt(monitors, 10, 10))
	assert.Equal(t, 1, MonitorAt(monitors, 1920, 0))
	assert.Equal(t, -1, MonitorAt(monitors, 100, 1200))
}

func TestBarArgs(t *testing.T) {
	m := Monitor{ID: 1, X: 1920, Y: 0, Width: 2560, Height: 1440}
	assert.Equal(t, []string{"1920", "0", "2560", "20", "1"}, m.BarArgs(20))
}

func TestToBGRA(t *testing.T) {
	assert.Equal(t, xgraphics.BGRA{B: 0x56, G: 0x34, R: 0x12, A: 0xff}, toBGRA(0x123456))
}

func TestTranslateEvents(t *testing.T) {
	w := &Window{win: &xwindow.Window{Id: 42}}

	ev, ok := w.translate(xproto.ExposeEvent{Window: 42, Count: 0})
	require.True(t, ok)
	assert.Equal(t, bar.EventExpose, ev.Kind)

	_, ok = w.translate(xproto.ExposeEvent{Window: 42, Count: 2})
	assert.False(t, ok, "intermediate exposes are ignored")

	_, ok = w.translate(xproto.ExposeEvent{Window: 7, Count: 0})
	assert.False(t, ok, "other windows are ignored")

	ev, ok = w.translate(xproto.MapNotifyEvent{Window: 42})
	require.True(t, ok)
	assert.Equal(t, bar.EventExpose, ev.Kind)

	ev, ok = w.translate(xproto.ButtonPressEvent{Event: 42, Detail: 3, EventX: 100, EventY: 5})
	require.True(t, ok)
	assert.Equal(t, bar.Event{Kind: bar.EventButtonPress, X: 100, Y: 5, Button: 3}, ev)

	_, ok = w.translate(xproto.KeyPressEvent{})
	assert.False(t, ok)
}
