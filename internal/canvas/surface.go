package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/rkirkendall/nano-canvas/internal/media"
)

// Surface is an RGBA pixel buffer owned by a single component. It leaves
// its owner only as an encoded snapshot.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a fully transparent surface. Sizes are clamped to
// [0, MaxSide]; callers validate with CheckSize first.
func NewSurface(width, height int) *Surface {
	w := min(max(width, 0), MaxSide)
	h := min(max(height, 0), MaxSide)
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (s *Surface) Width() int  { return s.img.Rect.Dx() }
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Size returns width and height as a point.
func (s *Surface) Size() image.Point { return s.img.Rect.Size() }

// RGBAAt returns the stored (premultiplied) pixel at x, y.
func (s *Surface) RGBAAt(x, y int) (r, g, b, a uint8) {
	c := s.img.RGBAAt(x, y)
	return c.R, c.G, c.B, c.A
}

// Clear zeroes every pixel.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// HasContent reports whether any pixel's packed RGBA value is non-zero.
func (s *Surface) HasContent() bool {
	for _, v := range s.img.Pix {
		if v != 0 {
			return true
		}
	}
	return false
}

// Snapshot returns an independent copy of the pixel buffer.
func (s *Surface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// Clone returns a surface backed by a copy of the pixels.
func (s *Surface) Clone() *Surface { return &Surface{img: s.Snapshot()} }

// EncodePNG encodes the surface losslessly.
func (s *Surface) EncodePNG() (media.Image, error) {
	if s.img.Rect.Empty() {
		return media.Image{}, fmt.Errorf("cannot encode empty %dx%d surface", s.Width(), s.Height())
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return media.Image{}, fmt.Errorf("encode png: %w", err)
	}
	return media.Image{Data: buf.Bytes(), MIMEType: media.PNG}, nil
}
