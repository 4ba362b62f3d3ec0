package canvas

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Drawing is a recorded set of gestures that can be replayed onto a surface.
// Points are client coordinates; Left/Top place the surface on screen.
type Drawing struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Left    float64   `json:"left,omitempty"`
	Top     float64   `json:"top,omitempty"`
	Brush   float64   `json:"brush,omitempty"`
	Strokes [][]Point `json:"strokes"`
}

// LoadDrawing decodes and validates a drawing document.
func LoadDrawing(r io.Reader) (*Drawing, error) {
	var d Drawing
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode drawing: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadDrawingFile loads a drawing document from disk.
func ReadDrawingFile(path string) (*Drawing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDrawing(f)
}

func (d *Drawing) Validate() error {
	if err := CheckSize(d.Width, d.Height, MaxSide); err != nil {
		return fmt.Errorf("drawing: %w", err)
	}
	if d.Brush < 0 {
		return fmt.Errorf("brush must be >= 0, got %v", d.Brush)
	}
	return nil
}

// Bounds is the on-screen rectangle of the surface the drawing was made on.
func (d *Drawing) Bounds() Rect {
	return Rect{Left: d.Left, Top: d.Top, Width: float64(d.Width), Height: float64(d.Height)}
}

// Replay feeds every stroke through r as pointer down, moves, and up.
func (d *Drawing) Replay(r *StrokeRenderer) bool {
	bounds := d.Bounds()
	for _, stroke := range d.Strokes {
		if len(stroke) == 0 {
			continue
		}
		r.PointerDown(PointerEvent{ClientX: stroke[0].X, ClientY: stroke[0].Y}, &bounds)
		for _, p := range stroke[1:] {
			r.PointerMove(PointerEvent{ClientX: p.X, ClientY: p.Y}, &bounds)
		}
		r.PointerUp()
	}
	return r.HasContent()
}
