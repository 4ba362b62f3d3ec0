package canvas

import (
	"strings"
	"testing"
)

func TestLoadDrawingAndReplay(t *testing.T) {
	doc := `{"width": 100, "height": 50, "left": 10, "top": 5, "brush": 6,
		"strokes": [[{"x": 20, "y": 30}, {"x": 90, "y": 30}], [], [{"x": 50, "y": 10}]]}`
	d, err := LoadDrawing(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := NewSurface(d.Width, d.Height)
	r := NewStrokeRenderer(s, SketchPen(d.Brush))
	if !d.Replay(r) {
		t.Fatal("expected content after replay")
	}
	// Client (50,30) maps to surface (40,25).
	if _, _, _, a := s.RGBAAt(40, 25); a != 255 {
		t.Fatalf("expected ink at mapped point, alpha=%d", a)
	}
	if _, _, _, a := s.RGBAAt(40, 5); a != 0 {
		t.Fatal("single-point stroke must not paint")
	}
	if r.State() != Idle {
		t.Fatal("replay left a gesture open")
	}
}

func TestLoadDrawingValidates(t *testing.T) {
	for _, doc := range []string{`{"width": 0, "height": 10}`, `{"width": 10, "height": 10, "brush": -1}`, `not json`,
		`{"width": 16777216, "height": 16777216}`, `{"width": 10, "height": 8193}`} {
		if _, err := LoadDrawing(strings.NewReader(doc)); err == nil {
			t.Fatalf("expected error for %s", doc)
		}
	}
}
