package x11

import (
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// lost is set once the server side of the connection has gone away.
	lost      atomic.Bool
	closeOnce sync.Once
}

// NewConnection connects to the X server named by display, or by $DISPLAY
// when display is empty.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server. The event stream of any
// window on this connection ends.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		if !c.lost.Load() {
			c.XUtil.Conn().Close()
		}
	})
}

// Lost reports whether the X server closed the connection. Requests on a
// lost connection must not be sent.
func (c *Connection) Lost() bool {
	return c.lost.Load()
}
