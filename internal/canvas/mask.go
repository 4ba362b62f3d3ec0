package canvas

import (
	"fmt"
	"image"

	"github.com/rkirkendall/nano-canvas/internal/media"
	xdraw "golang.org/x/image/draw"
)

// MaskOptions tunes mask synthesis.
type MaskOptions struct {
	// Interpolator stretches the overlay to native size. Binarisation runs
	// afterwards, so any filter yields the same two-colour result.
	Interpolator xdraw.Interpolator
}

func defaultMaskOptions() MaskOptions {
	return MaskOptions{Interpolator: xdraw.NearestNeighbor}
}

// SynthesizeMask stretches overlay onto a new surface of the native size and
// binarises it: pixels with any alpha become opaque white, all others opaque
// black.
func SynthesizeMask(overlay *Surface, native image.Point, opts *MaskOptions) (*Surface, error) {
	if overlay == nil || overlay.img.Rect.Empty() {
		return nil, fmt.Errorf("overlay surface is empty")
	}
	if err := CheckSize(native.X, native.Y, MaxSide); err != nil {
		return nil, fmt.Errorf("native size: %w", err)
	}
	o := defaultMaskOptions()
	if opts != nil && opts.Interpolator != nil {
		o.Interpolator = opts.Interpolator
	}
	mask := NewSurface(native.X, native.Y)
	o.Interpolator.Scale(mask.img, mask.img.Rect, overlay.img, overlay.img.Rect, xdraw.Src, nil)
	Binarize(mask)
	return mask, nil
}

// Binarize forces every pixel of s to opaque black or opaque white depending
// on whether its alpha is zero.
func Binarize(s *Surface) {
	pix := s.img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		var v uint8
		if pix[i+3] > 0 {
			v = 255
		}
		pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
	}
}

// MaskPayload synthesises the mask for overlay and encodes it as PNG.
func MaskPayload(overlay *Surface, native image.Point) (media.Image, error) {
	mask, err := SynthesizeMask(overlay, native, nil)
	if err != nil {
		return media.Image{}, err
	}
	return mask.EncodePNG()
}
