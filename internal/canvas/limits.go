package canvas

import "fmt"

// MaxSide bounds the width and height of every surface the package
// allocates, including masks resampled to an image's native size.
const MaxSide = 8192

// CheckSize reports an error unless a width x height surface is positive
// and fits within limit on both sides. A limit outside (0, MaxSide] means
// MaxSide.
func CheckSize(width, height, limit int) error {
	if limit <= 0 || limit > MaxSide {
		limit = MaxSide
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface must have a positive size, got %dx%d", width, height)
	}
	if width > limit || height > limit {
		return fmt.Errorf("surface %dx%d exceeds the %d pixel limit", width, height, limit)
	}
	return nil
}
