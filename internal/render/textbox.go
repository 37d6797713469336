package render

// Alignment selects which edge of a box is pinned to its anchor.
type Alignment int

const (
	// AlignLeft pins the left edge; the box grows to the right.
	AlignLeft Alignment = iota
	// AlignRight pins the right edge; the box grows to the left.
	AlignRight
)

// TextBox is a filled box with horizontally padded, vertically centered text.
type TextBox struct {
	Text       string
	Height     int
	Foreground Color
	Background Color
	Align      Alignment
	Anchor     int
	Margin     int
}

// Width returns the full box width, margins included.
func (b TextBox) Width(c Canvas) int {
	w, _ := c.TextExtents(b.Text)
	return w + 2*b.Margin
}

// Draw paints the box and returns the cursor past it: the right edge for
// left-aligned boxes, the left edge for right-aligned ones.
func (b TextBox) Draw(c Canvas) (int, error) {
	textW, textH := c.TextExtents(b.Text)
	boxW := textW + 2*b.Margin

	left := b.Anchor
	if b.Align == AlignRight {
		left = b.Anchor - boxW
	}

	c.FillRect(Rect{X: left, Y: 0, Width: boxW, Height: b.Height}, b.Background)
	if err := c.DrawText(left+b.Margin, (b.Height-textH)/2, b.Foreground, b.Text); err != nil {
		return b.Anchor, err
	}

	if b.Align == AlignRight {
		return left, nil
	}
	return left + boxW, nil
}
