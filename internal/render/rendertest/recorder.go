// Package rendertest provides a recording render.Canvas for tests.
package rendertest

import (
	"sync"
	"unicode/utf8"

	"github.com/1broseidon/hlbar/internal/render"
)

// Op is one recorded drawing call.
type Op struct {
	Kind  string // "paint", "rect" or "text"
	Rect  render.Rect
	Color render.Color
	Text  string
}

// Recorder is a Canvas with fixed-size glyphs that records every call.
type Recorder struct {
	CharWidth  int
	CharHeight int
	// TextErr, when set, is returned from DrawText.
	TextErr error

	mu  sync.Mutex
	ops []Op
}

// NewRecorder returns a Recorder with 7x13 glyphs.
func NewRecorder() *Recorder {
	return &Recorder{CharWidth: 7, CharHeight: 13}
}

func (r *Recorder) Paint(c render.Color) {
	r.record(Op{Kind: "paint", Color: c})
}

func (r *Recorder) FillRect(rect render.Rect, c render.Color) {
	r.record(Op{Kind: "rect", Rect: rect, Color: c})
}

func (r *Recorder) TextExtents(text string) (int, int) {
	return utf8.RuneCountInString(text) * r.CharWidth, r.CharHeight
}

func (r *Recorder) DrawText(x, y int, c render.Color, text string) error {
	if r.TextErr != nil {
		return r.TextErr
	}
	w, h := r.TextExtents(text)
	r.record(Op{Kind: "text", Rect: render.Rect{X: x, Y: y, Width: w, Height: h}, Color: c, Text: text})
	return nil
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Texts returns the recorded text ops in call order.
func (r *Recorder) Texts() []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Kind == "text" {
			out = append(out, op)
		}
	}
	return out
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}
