package geometry_test

import (
	"testing"

	"github.com/signet-dev/signet/internal/geometry"
)

func TestRect_PixelPoint(t *testing.T) {
	tests := []struct {
		name       string
		rect       geometry.Rect
		pageW      int
		pageH      int
		wantX      float64
		wantY      float64
	}{
		{
			name:  "origin",
			rect:  geometry.Rect{X: 0, Y: 0},
			pageW: 800, pageH: 1000,
			wantX: 0, wantY: 0,
		},
		{
			name:  "interior point",
			rect:  geometry.Rect{X: 10, Y: 10},
			pageW: 800, pageH: 1000,
			wantX: 80, wantY: 100,
		},
		{
			name:  "far corner",
			rect:  geometry.Rect{X: 100, Y: 100},
			pageW: 800, pageH: 1000,
			wantX: 800, wantY: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.rect.PixelPoint(tt.pageW, tt.pageH)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("PixelPoint() = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRect_Clamp(t *testing.T) {
	tests := []struct {
		name string
		rect geometry.Rect
		want geometry.Rect
	}{
		{
			name: "in bounds unchanged",
			rect: geometry.Rect{X: 50, Y: 50, W: 150, H: 60},
			want: geometry.Rect{X: 50, Y: 50, W: 150, H: 60},
		},
		{
			name: "negative position",
			rect: geometry.Rect{X: -10, Y: -5, W: 150, H: 60},
			want: geometry.Rect{X: 0, Y: 0, W: 150, H: 60},
		},
		{
			name: "position beyond page",
			rect: geometry.Rect{X: 120, Y: 150, W: 150, H: 60},
			want: geometry.Rect{X: 100, Y: 100, W: 150, H: 60},
		},
		{
			name: "undersized dimensions raised to minimums",
			rect: geometry.Rect{X: 50, Y: 50, W: 10, H: 5},
			want: geometry.Rect{X: 50, Y: 50, W: geometry.MinWidth, H: geometry.MinHeight},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Clamp(); got != tt.want {
				t.Errorf("Clamp() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRect_Resize(t *testing.T) {
	r := geometry.Rect{X: 25, Y: 25, W: 150, H: 60}

	resized := r.Resize(200, 80)
	if resized.W != 200 || resized.H != 80 {
		t.Errorf("Resize(200, 80) = %+v, want W=200 H=80", resized)
	}

	shrunk := r.Resize(1, 1)
	if shrunk.W != geometry.MinWidth || shrunk.H != geometry.MinHeight {
		t.Errorf("Resize(1, 1) = %+v, want minimums", shrunk)
	}
}

func TestRect_Move(t *testing.T) {
	r := geometry.Rect{X: 50, Y: 50, W: 150, H: 60}

	moved := r.Move(80, 100, 800, 1000)
	if moved.X != 60 || moved.Y != 60 {
		t.Errorf("Move(80, 100) = (%v, %v), want (60, 60)", moved.X, moved.Y)
	}

	clamped := r.Move(800, 800, 800, 1000)
	if clamped.X != 100 || clamped.Y != 100 {
		t.Errorf("Move beyond page = (%v, %v), want (100, 100)", clamped.X, clamped.Y)
	}

	unchanged := r.Move(80, 100, 0, 0)
	if unchanged != r {
		t.Errorf("Move with degenerate canvas = %+v, want unchanged", unchanged)
	}
}

func TestScale_Factor(t *testing.T) {
	tests := []struct {
		name  string
		scale geometry.Scale
		want  float64
	}{
		{"default", geometry.DefaultScale(), 2},
		{"unity", geometry.Scale{PageRaster: 1, EditingCanvas: 1}, 1},
		{"fractional", geometry.Scale{PageRaster: 3, EditingCanvas: 2}, 1.5},
		{"degenerate canvas", geometry.Scale{PageRaster: 2, EditingCanvas: 0}, 1},
		{"degenerate raster", geometry.Scale{PageRaster: 0, EditingCanvas: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scale.Factor(); got != tt.want {
				t.Errorf("Factor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScale_Apply(t *testing.T) {
	w, h := geometry.DefaultScale().Apply(150, 60)
	if w != 300 || h != 120 {
		t.Errorf("Apply(150, 60) = (%v, %v), want (300, 120)", w, h)
	}
}
