package bar

// EventKind classifies windowing events the lifecycle controller reacts to.
type EventKind int

const (
	// EventExpose means the window contents were lost and need a redraw.
	EventExpose EventKind = iota
	// EventButtonPress is a mouse click on the strip.
	EventButtonPress
)

func (k EventKind) String() string {
	switch k {
	case EventExpose:
		return "expose"
	case EventButtonPress:
		return "button_press"
	default:
		return "unknown"
	}
}

// Event is one windowing event. X, Y and Button are set for button presses.
type Event struct {
	Kind   EventKind
	X      int
	Y      int
	Button int
}
