package x11

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/BurntSushi/freetype-go/freetype/truetype"
	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/1broseidon/hlbar/internal/bar"
	"github.com/1broseidon/hlbar/internal/render"
)

// LoadFont parses the first readable TrueType font among paths.
func LoadFont(paths []string) (*truetype.Font, string, error) {
	var errs []error
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		font, err := xgraphics.ParseFont(f)
		f.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		return font, path, nil
	}
	return nil, "", fmt.Errorf("no usable font: %w", errors.Join(errs...))
}

// Surface is the off-screen frame buffer of a bar window. Drawing goes to a
// client-side image; Publish uploads it to a pixmap that backs the window.
// It is used only by the draw loop.
type Surface struct {
	conn     *Connection
	window   *Window
	img      *xgraphics.Image
	font     *truetype.Font
	fontSize float64
}

// NewSurface allocates a frame buffer sized to the window's initial geometry.
func NewSurface(conn *Connection, window *Window, g bar.Geometry, font *truetype.Font, fontSize float64) (*Surface, error) {
	img := xgraphics.New(conn.XUtil, image.Rect(0, 0, g.Width, g.Height))
	if err := img.XSurfaceSet(window.ID()); err != nil {
		return nil, fmt.Errorf("failed to attach surface: %w", err)
	}
	return &Surface{
		conn:     conn,
		window:   window,
		img:      img,
		font:     font,
		fontSize: fontSize,
	}, nil
}

func toBGRA(c render.Color) xgraphics.BGRA {
	r, g, b := c.Components()
	return xgraphics.BGRA{B: b, G: g, R: r, A: 0xff}
}

// Paint fills the whole buffer.
func (s *Surface) Paint(c render.Color) {
	s.fill(s.img.Bounds(), toBGRA(c))
}

// FillRect fills r, clipped to the buffer.
func (s *Surface) FillRect(r render.Rect, c render.Color) {
	rect := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	s.fill(rect.Intersect(s.img.Bounds()), toBGRA(c))
}

func (s *Surface) fill(r image.Rectangle, c xgraphics.BGRA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s.img.SetBGRA(x, y, c)
		}
	}
}

func (s *Surface) TextExtents(text string) (int, int) {
	return xgraphics.Extents(s.font, s.fontSize, text)
}

func (s *Surface) DrawText(x, y int, c render.Color, text string) error {
	_, _, err := s.img.Text(x, y, c, s.fontSize, s.font, text)
	return err
}

// Publish sizes the window to g and shows the rendered frame.
func (s *Surface) Publish(g bar.Geometry) error {
	s.window.Resize(g.Width, g.Height)
	s.img.XDraw()
	s.img.XPaint(s.window.ID())
	return nil
}

// Flush waits until the X server has processed every request sent so far.
func (s *Surface) Flush() error {
	s.conn.XUtil.Sync()
	return nil
}

// Destroy frees the server-side pixmap.
func (s *Surface) Destroy() {
	if s.conn.Lost() {
		return
	}
	s.img.Destroy()
}
