package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/render"
)

// WindowName is the _NET_WM_NAME of the bar window.
const WindowName = "hlbar"

// Window is the strip's override-redirect window.
type Window struct {
	conn  *Connection
	win   *xwindow.Window
	width int
}

// CreateWindow creates and maps the bar window at g, filled with bg until
// the first frame is published.
func (c *Connection) CreateWindow(g bar.Geometry, bg render.Color) (*Window, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("invalid bar geometry %s", g)
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	mask := xproto.EventMaskExposure | xproto.EventMaskButtonPress | xproto.EventMaskStructureNotify
	// Value list order follows the bit positions of the mask (low to high):
	// back_pixel, override_redirect, event_mask.
	err = win.CreateChecked(c.Root, g.X, g.Y, g.Width, g.Height,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		uint32(bg)&0xffffff, 1, uint32(mask))
	if err != nil {
		return nil, fmt.Errorf("failed to create bar window: %w", err)
	}

	// Pagers and compositors look at these even for unmanaged windows.
	if err := ewmh.WmNameSet(c.XUtil, win.Id, WindowName); err != nil {
		return nil, fmt.Errorf("failed to set window name: %w", err)
	}
	if err := ewmh.WmWindowTypeSet(c.XUtil, win.Id, []string{"_NET_WM_WINDOW_TYPE_DOCK"}); err != nil {
		return nil, fmt.Errorf("failed to set window type: %w", err)
	}

	win.Map()
	return &Window{conn: c, win: win, width: g.Width}, nil
}

// ID returns the X window id.
func (w *Window) ID() xproto.Window {
	return w.win.Id
}

// Resize changes the window width if it differs from the current one.
// X windows cannot be zero pixels wide, so widths below 1 become 1.
func (w *Window) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if width == w.width {
		return
	}
	w.win.Resize(width, height)
	w.width = width
}

// Destroy unmaps and destroys the window.
func (w *Window) Destroy() {
	if w.conn.Lost() {
		return
	}
	w.win.Destroy()
}
