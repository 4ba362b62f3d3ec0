// Package canvas paints pointer strokes onto overlay surfaces and turns an
// overlay into a binary mask at the original image's native resolution.
package canvas

// Point is a position in surface-local pixel coordinates (or client
// coordinates before mapping).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a surface's on-screen bounding rectangle in client coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Event is a pointer or touch input event.
type Event interface {
	clientPoint() (Point, bool)
}

// PointerEvent is a mouse/pen event carrying client coordinates.
type PointerEvent struct {
	ClientX, ClientY float64
}

func (e PointerEvent) clientPoint() (Point, bool) {
	return Point{X: e.ClientX, Y: e.ClientY}, true
}

// Touch is one active contact of a touch event.
type Touch struct {
	ClientX, ClientY float64
}

// TouchEvent lists the currently active contacts; only the first is used.
type TouchEvent struct {
	Touches []Touch
}

func (e TouchEvent) clientPoint() (Point, bool) {
	if len(e.Touches) == 0 {
		return Point{}, false
	}
	t := e.Touches[0]
	return Point{X: t.ClientX, Y: t.ClientY}, true
}

// MapEvent translates ev into coordinates local to the surface whose
// on-screen rectangle is bounds. It reports false when the surface is not
// mounted (nil or zero-area bounds) or the event carries no position.
func MapEvent(ev Event, bounds *Rect) (Point, bool) {
	if ev == nil || bounds == nil || bounds.Width <= 0 || bounds.Height <= 0 {
		return Point{}, false
	}
	p, ok := ev.clientPoint()
	if !ok {
		return Point{}, false
	}
	return Point{X: p.X - bounds.Left, Y: p.Y - bounds.Top}, true
}
