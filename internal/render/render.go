// Package render holds the drawing vocabulary shared by bar modules and the
// display backends: colors, rectangles, the Canvas surface and text boxes.
package render

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB value laid out as 0xRRGGBB.
type Color uint32

// RGBA implements image/color.Color. Colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c>>16) & 0xff
	g = uint32(c>>8) & 0xff
	b = uint32(c) & 0xff
	r |= r << 8
	g |= g << 8
	b |= b << 8
	return r, g, b, 0xffff
}

// Components returns the 8-bit red, green and blue channels.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseColor accepts "#rrggbb", "0xrrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	raw := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(raw, "#"):
		raw = raw[1:]
	case strings.HasPrefix(raw, "0x"), strings.HasPrefix(raw, "0X"):
		raw = raw[2:]
	}
	if len(raw) != 6 {
		return 0, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Fade maps p in [0, 1] onto a red -> yellow -> green ramp.
func Fade(p float64) Color {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	var r, g float64
	if p <= 0.5 {
		r, g = 1, 2*p
	} else {
		r, g = 1-2*(p-0.5), 1
	}
	return Color(uint32(r*255+0.5)<<16 | uint32(g*255+0.5)<<8)
}

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Canvas is the drawing surface a frame is rendered onto.
type Canvas interface {
	// Paint fills the whole surface.
	Paint(c Color)
	FillRect(r Rect, c Color)
	// TextExtents reports the pixel size of text in the surface font.
	TextExtents(text string) (width, height int)
	// DrawText draws text with its top-left corner at (x, y).
	DrawText(x, y int, c Color, text string) error
}
