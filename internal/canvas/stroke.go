package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// Stroke colours: opaque white marks the region to inpaint, opaque black is
// ink on the sketch pad.
var (
	MaskColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	SketchColor = color.RGBA{A: 255}
)

// Pen is the colour and line width used for a stroke.
type Pen struct {
	Color color.RGBA
	Width float64
}

// MaskPen scales brush (expressed in native image pixels) down to the overlay
// so the mask covers the same share of the original regardless of how large
// the image is displayed.
func MaskPen(brush float64, overlayWidth, nativeWidth int) Pen {
	w := brush
	if nativeWidth > 0 {
		w = brush * float64(overlayWidth) / float64(nativeWidth)
	}
	return Pen{Color: MaskColor, Width: w}
}

// SketchPen draws black ink at a fixed width in overlay pixels.
func SketchPen(brush float64) Pen {
	return Pen{Color: SketchColor, Width: brush}
}

// State of the gesture state machine.
type State int

const (
	Idle State = iota
	Stroking
)

func (s State) String() string {
	if s == Stroking {
		return "drawing"
	}
	return "idle"
}

// kappa places cubic control points so a quarter circle is approximated
// within 0.03% of the radius.
const kappa = 0.5522847498

// StrokeRenderer paints drag gestures onto a Surface with round caps and
// joins: idle -> drawing on Begin, drawing -> drawing on Move, drawing ->
// idle on End.
type StrokeRenderer struct {
	surface    *Surface
	pen        Pen
	state      State
	last       Point
	havePoint  bool
	hasContent bool
	z          vector.Rasterizer
}

func NewStrokeRenderer(s *Surface, pen Pen) *StrokeRenderer {
	return &StrokeRenderer{surface: s, pen: pen}
}

// SetPen changes the pen used by subsequent segments.
func (r *StrokeRenderer) SetPen(p Pen) { r.pen = p }

func (r *StrokeRenderer) Pen() Pen          { return r.pen }
func (r *StrokeRenderer) State() State      { return r.state }
func (r *StrokeRenderer) Surface() *Surface { return r.surface }
func (r *StrokeRenderer) HasContent() bool  { return r.hasContent }

// Begin starts a new path at p.
func (r *StrokeRenderer) Begin(p Point) {
	r.state = Stroking
	r.last = p
	r.havePoint = true
}

// Move extends the path to p and paints the segment from the previous point.
// A move while idle is ignored.
func (r *StrokeRenderer) Move(p Point) {
	if r.state != Stroking {
		return
	}
	if !r.havePoint {
		r.last = p
		r.havePoint = true
		return
	}
	r.paintSegment(r.last, p)
	r.last = p
}

// End returns to idle and rescans the surface for painted pixels.
func (r *StrokeRenderer) End() bool {
	r.state = Idle
	r.havePoint = false
	r.hasContent = r.surface.HasContent()
	return r.hasContent
}

// Clear wipes the surface and drops any gesture in progress.
func (r *StrokeRenderer) Clear() {
	r.surface.Clear()
	r.state = Idle
	r.havePoint = false
	r.hasContent = false
}

// PointerDown starts a gesture from an input event. The gesture still starts
// when the event cannot be mapped; the next mappable move anchors the path.
func (r *StrokeRenderer) PointerDown(ev Event, bounds *Rect) {
	p, ok := MapEvent(ev, bounds)
	r.state = Stroking
	r.havePoint = ok
	r.last = p
}

// PointerMove feeds a move event; unmappable events are dropped.
func (r *StrokeRenderer) PointerMove(ev Event, bounds *Rect) {
	if p, ok := MapEvent(ev, bounds); ok {
		r.Move(p)
	}
}

// PointerUp ends the gesture (pointer up, touch end, or leaving the surface).
func (r *StrokeRenderer) PointerUp() bool {
	return r.End()
}

func (r *StrokeRenderer) paintSegment(a, b Point) {
	dst := r.surface.img
	if dst.Rect.Empty() {
		return
	}
	radius := math.Max(r.pen.Width, 1) / 2
	r.z.Reset(dst.Rect.Dx(), dst.Rect.Dy())
	capsule(&r.z, a, b, radius)
	r.z.Draw(dst, dst.Rect, image.NewUniform(r.pen.Color), image.Point{})
}

// capsule adds the outline of a round-capped segment of the given radius.
// Both caps are traced in the same rotational direction so the path has a
// consistent winding.
func capsule(z *vector.Rasterizer, a, b Point, radius float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		circle(z, a, radius)
		return
	}
	// n is the unit normal; its angle is the start angle of the cap at b.
	nx, ny := -dy/length, dx/length
	phi := math.Atan2(ny, nx)

	z.MoveTo(float32(a.X+nx*radius), float32(a.Y+ny*radius))
	z.LineTo(float32(b.X+nx*radius), float32(b.Y+ny*radius))
	arc(z, b, radius, phi, 2)
	z.LineTo(float32(a.X-nx*radius), float32(a.Y-ny*radius))
	arc(z, a, radius, phi+math.Pi, 2)
	z.ClosePath()
}

func circle(z *vector.Rasterizer, c Point, radius float64) {
	z.MoveTo(float32(c.X+radius), float32(c.Y))
	arc(z, c, radius, 0, 4)
	z.ClosePath()
}

// arc appends quarters quarter-circle cubics around c starting at angle
// start and turning in the negative direction.
func arc(z *vector.Rasterizer, c Point, radius, start float64, quarters int) {
	k := kappa * radius
	a := start
	for range quarters {
		b := a - math.Pi/2
		sa, ca := math.Sincos(a)
		sb, cb := math.Sincos(b)
		p0x, p0y := c.X+radius*ca, c.Y+radius*sa
		p3x, p3y := c.X+radius*cb, c.Y+radius*sb
		z.CubeTo(
			float32(p0x+k*sa), float32(p0y-k*ca),
			float32(p3x-k*sb), float32(p3y+k*cb),
			float32(p3x), float32(p3y),
		)
		a = b
	}
}
