package session

import (
	"errors"
	"fmt"

	"github.com/rkirkendall/nano-canvas/internal/canvas"
)

// LayoutOverlay sizes the mask overlay to the displayed size of the
// original. Any mask drawn so far is discarded.
func (s *Session) LayoutOverlay(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := canvas.CheckSize(width, height, s.maxSide); err != nil {
		return fmt.Errorf("session: overlay: %w", err)
	}
	if s.original.Empty() {
		return errors.New("session: no image to mask")
	}
	s.overlay = canvas.NewStrokeRenderer(canvas.NewSurface(width, height), s.maskPen(width))
	return nil
}

// LayoutSketch sizes the sketch pad. Any sketch drawn so far is discarded.
func (s *Session) LayoutSketch(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := canvas.CheckSize(width, height, s.maxSide); err != nil {
		return fmt.Errorf("session: sketch pad: %w", err)
	}
	s.sketch = canvas.NewStrokeRenderer(canvas.NewSurface(width, height), canvas.SketchPen(s.sketchBrush))
	return nil
}

// SetMaxSide bounds uploaded images and both drawing surfaces on each side.
// Values outside (0, canvas.MaxSide] mean canvas.MaxSide.
func (s *Session) SetMaxSide(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxSide = n
}

// SetMaskBrush sets the mask brush in native image pixels.
func (s *Session) SetMaskBrush(size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maskBrush = clamp(size, MinMaskBrush, MaxMaskBrush)
	if s.overlay != nil {
		s.overlay.SetPen(s.maskPen(s.overlay.Surface().Width()))
	}
}

// SetSketchBrush sets the sketch brush in pad pixels.
func (s *Session) SetSketchBrush(size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sketchBrush = clamp(size, MinSketchBrush, MaxSketchBrush)
	if s.sketch != nil {
		s.sketch.SetPen(canvas.SketchPen(s.sketchBrush))
	}
}

func (s *Session) maskPen(overlayWidth int) canvas.Pen {
	return canvas.MaskPen(s.maskBrush, overlayWidth, s.native.X)
}

// MaskDown, MaskMove and MaskUp drive the mask overlay. Events are ignored
// until the overlay has been laid out.
func (s *Session) MaskDown(ev canvas.Event, bounds *canvas.Rect) {
	s.withOverlay(func(r *canvas.StrokeRenderer) { r.PointerDown(ev, bounds) })
}

func (s *Session) MaskMove(ev canvas.Event, bounds *canvas.Rect) {
	s.withOverlay(func(r *canvas.StrokeRenderer) { r.PointerMove(ev, bounds) })
}

func (s *Session) MaskUp() {
	s.withOverlay(func(r *canvas.StrokeRenderer) { r.PointerUp() })
}

// ClearMask wipes the overlay.
func (s *Session) ClearMask() {
	s.withOverlay(func(r *canvas.StrokeRenderer) { r.Clear() })
}

// SketchDown, SketchMove and SketchUp drive the sketch pad.
func (s *Session) SketchDown(ev canvas.Event, bounds *canvas.Rect) {
	s.withSketch(func(r *canvas.StrokeRenderer) { r.PointerDown(ev, bounds) })
}

func (s *Session) SketchMove(ev canvas.Event, bounds *canvas.Rect) {
	s.withSketch(func(r *canvas.StrokeRenderer) { r.PointerMove(ev, bounds) })
}

func (s *Session) SketchUp() {
	s.withSketch(func(r *canvas.StrokeRenderer) { r.PointerUp() })
}

// ClearSketch wipes the sketch pad.
func (s *Session) ClearSketch() {
	s.withSketch(func(r *canvas.StrokeRenderer) { r.Clear() })
}

// DrawMask lays out the overlay from d and replays its strokes. A positive
// d.Brush replaces the mask brush.
func (s *Session) DrawMask(d *canvas.Drawing) (bool, error) {
	if d.Brush > 0 {
		s.SetMaskBrush(d.Brush)
	}
	if err := s.LayoutOverlay(d.Width, d.Height); err != nil {
		return false, err
	}
	var ok bool
	s.withOverlay(func(r *canvas.StrokeRenderer) { ok = d.Replay(r) })
	return ok, nil
}

// DrawSketch lays out the sketch pad from d and replays its strokes.
func (s *Session) DrawSketch(d *canvas.Drawing) (bool, error) {
	if d.Brush > 0 {
		s.SetSketchBrush(d.Brush)
	}
	if err := s.LayoutSketch(d.Width, d.Height); err != nil {
		return false, err
	}
	var ok bool
	s.withSketch(func(r *canvas.StrokeRenderer) { ok = d.Replay(r) })
	return ok, nil
}

func (s *Session) withOverlay(f func(*canvas.StrokeRenderer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlay != nil {
		f(s.overlay)
	}
}

func (s *Session) withSketch(f func(*canvas.StrokeRenderer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sketch != nil {
		f(s.sketch)
	}
}

func (s *Session) clearSurfaces() {
	if s.overlay != nil {
		s.overlay.Clear()
	}
	if s.sketch != nil {
		s.sketch.Clear()
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
