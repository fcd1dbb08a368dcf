// Package geometry converts between the percentage-normalized coordinates
// fields are stored in and pixel positions on a concrete page raster.
// Positions (X, Y) are percentages of the page dimensions; width and height
// remain in the pixel units of the editing canvas the field was authored on.
package geometry

const (
	// MinWidth is the smallest width a field may be resized to, in editing
	// canvas pixels.
	MinWidth = 80.0

	// MinHeight is the smallest height a field may be resized to, in editing
	// canvas pixels.
	MinHeight = 40.0

	maxPercent = 100.0
)

// Rect describes a field's placement. X and Y are percentages of the page
// width and height in [0, 100]; W and H are editing canvas pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// PixelPoint resolves the rect's origin to pixel coordinates on a raster of
// the given dimensions.
func (r Rect) PixelPoint(pageWidth, pageHeight int) (float64, float64) {
	return r.X / maxPercent * float64(pageWidth), r.Y / maxPercent * float64(pageHeight)
}

// Clamp bounds the rect's position to the page and enforces minimum size.
func (r Rect) Clamp() Rect {
	r.X = clamp(r.X, 0, maxPercent)
	r.Y = clamp(r.Y, 0, maxPercent)
	if r.W < MinWidth {
		r.W = MinWidth
	}
	if r.H < MinHeight {
		r.H = MinHeight
	}
	return r
}

// Resize sets a new width and height, holding the configured minimums.
func (r Rect) Resize(w, h float64) Rect {
	r.W = w
	r.H = h
	return r.Clamp()
}

// Move applies a pixel delta measured on a canvas of the given dimensions,
// converting it to percent before clamping. Degenerate canvas dimensions
// leave the rect unchanged.
func (r Rect) Move(dx, dy float64, canvasWidth, canvasHeight int) Rect {
	if canvasWidth <= 0 || canvasHeight <= 0 {
		return r
	}
	r.X += dx / float64(canvasWidth) * maxPercent
	r.Y += dy / float64(canvasHeight) * maxPercent
	return r.Clamp()
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

// Scale relates the resolution pages were rasterized at to the resolution of
// the editing canvas fields were sized on. Field widths and heights are
// multiplied by the resulting factor when burned into a page raster.
type Scale struct {
	PageRaster    float64
	EditingCanvas float64
}

// DefaultScale reflects pages rasterized at twice the editing canvas
// resolution.
func DefaultScale() Scale {
	return Scale{PageRaster: 2, EditingCanvas: 1}
}

// Factor returns the raster-to-canvas ratio. A degenerate canvas scale
// yields 1 so compositing never collapses a field to zero size.
func (s Scale) Factor() float64 {
	if s.EditingCanvas <= 0 || s.PageRaster <= 0 {
		return 1
	}
	return s.PageRaster / s.EditingCanvas
}

// Apply scales a field's stored width and height into raster pixels.
func (s Scale) Apply(w, h float64) (float64, float64) {
	f := s.Factor()
	return w * f, h * f
}
