package tray

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/config"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Geometry
		ok   bool
	}{
		{"plain", "geometry: 60x20+1860+0", Geometry{60, 20, 1860, 0}, true},
		{"embedded", "stalonetray: tray window geometry: 40x16+3800+0 (grow)", Geometry{40, 16, 3800, 0}, true},
		{"last wins", "geometry: 1x1+5+0 geometry: 80x20+1840+0", Geometry{80, 20, 1840, 0}, true},
		{"noise", "stalonetray: started", Geometry{}, false},
		{"partial", "geometry: 60x20", Geometry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGeometry(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArgs(t *testing.T) {
	cfg := config.DefaultConfig().Tray
	cfg.Offset = 1920
	strip := bar.Geometry{X: 0, Y: 4, Width: 1920, Height: 18}

	assert.Equal(t, []string{
		"stalonetray",
		"--icon-size", "18",
		"--background", "#333333",
		"--grow-gravity", "E",
		"--geometry", "1x1-1920+4",
		"--kludges", "force_icons_size",
		"--log-level", "info",
	}, Args(cfg, strip))

	cfg.IconSize = 16
	assert.Equal(t, "16", Args(cfg, strip)[2])
}

func TestWidthFor(t *testing.T) {
	assert.Equal(t, 1860, WidthFor(bar.Geometry{X: 0, Width: 1920}, Geometry{X: 1860}))
	assert.Equal(t, 1780, WidthFor(bar.Geometry{X: 1920, Width: 1920}, Geometry{X: 3700}))
}

func TestRunResizesState(t *testing.T) {
	state := bar.NewState(bar.Geometry{X: 0, Y: 0, Width: 1200, Height: 20}, bar.Layout{}, nil)
	_, ok := state.WaitAndConsume()
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, state, Options{
			Config: config.DefaultConfig().Tray,
			Argv: []string{"/bin/sh", "-c",
				"echo 'starting' >&2; echo 'geometry: 60x20+1140+0' >&2; exec sleep 60"},
		})
	}()

	require.Eventually(t, func() bool { return state.Geometry().Width == 1140 }, 2*time.Second, time.Millisecond)
	assert.True(t, state.Pending(), "resize requests a redraw")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("tray did not stop")
	}
}

func TestRunMissingHelperIsFatal(t *testing.T) {
	state := bar.NewState(bar.Geometry{Width: 100, Height: 20}, bar.Layout{}, nil)
	cfg := config.DefaultConfig().Tray
	cfg.Command = "/nonexistent/stalonetray"

	err := Run(context.Background(), state, Options{Config: cfg})
	require.Error(t, err)
}
