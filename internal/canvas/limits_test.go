package canvas

import "testing"

func TestCheckSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		limit         int
		ok            bool
	}{
		{"fits", 600, 400, 1024, true},
		{"on the limit", 1024, 1024, 1024, true},
		{"too wide", 1025, 10, 1024, false},
		{"too tall", 10, 1025, 1024, false},
		{"zero", 0, 10, 1024, false},
		{"negative", 10, -1, 1024, false},
		{"no limit falls back to MaxSide", MaxSide, MaxSide, 0, true},
		{"limit above MaxSide is capped", MaxSide + 1, 10, 1 << 20, false},
		{"huge", 16777216, 16777216, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckSize(tc.width, tc.height, tc.limit)
			if (err == nil) != tc.ok {
				t.Fatalf("CheckSize(%d, %d, %d) = %v, want ok=%v", tc.width, tc.height, tc.limit, err, tc.ok)
			}
		})
	}
}

func TestNewSurfaceClampsToMaxSide(t *testing.T) {
	s := NewSurface(MaxSide+10, 1)
	if s.Width() != MaxSide || s.Height() != 1 {
		t.Fatalf("size = %dx%d, want %dx1", s.Width(), s.Height(), MaxSide)
	}
}
