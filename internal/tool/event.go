package tool

import "github.com/UnknownOlympus/shooter/internal/geometry"

// EventKind tags an input event.
type EventKind int

// Input event kinds.
const (
	EventPress EventKind = iota + 1
	EventMove
	EventRelease
	EventKeyDown
	EventKeyUp
)

func (k EventKind) String() string {
	switch k {
	case EventPress:
		return "press"
	case EventMove:
		return "move"
	case EventRelease:
		return "release"
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	default:
		return "unknown"
	}
}

// Button is a pointer button.
type Button int

// Pointer buttons.
const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Key is a keyboard key relevant to the tools.
type Key int

// Keys.
const (
	KeyOther Key = iota
	KeyEscape
	KeyControl
	KeyShift
)

// Pixel is a screen position.
type Pixel struct {
	X int
	Y int
}

// ManhattanDistance returns |dx| + |dy|.
func (p Pixel) ManhattanDistance(q Pixel) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Event is a single input event. Map is filled by the session from Pixel
// when a Translator is configured.
type Event struct {
	Kind   EventKind
	Button Button
	Pixel  Pixel
	Map    geometry.Point
	Key    Key
}

// Press builds a press event.
func Press(button Button, px Pixel, at geometry.Point) Event {
	return Event{Kind: EventPress, Button: button, Pixel: px, Map: at}
}

// Move builds a move event.
func Move(px Pixel, at geometry.Point) Event {
	return Event{Kind: EventMove, Pixel: px, Map: at}
}

// Release builds a release event.
func Release(button Button, px Pixel, at geometry.Point) Event {
	return Event{Kind: EventRelease, Button: button, Pixel: px, Map: at}
}

// KeyDown builds a key-down event.
func KeyDown(key Key) Event {
	return Event{Kind: EventKeyDown, Key: key}
}

// KeyUp builds a key-up event.
func KeyUp(key Key) Event {
	return Event{Kind: EventKeyUp, Key: key}
}
