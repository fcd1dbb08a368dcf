package signature

import (
	"image"
	"image/color"
	"math"
)

// strokeRadius gives the 2px round-capped stroke of the capture canvas.
const strokeRadius = 1.0

// EventKind tags the input source of a capture event.
type EventKind int

// Capture event sources.
const (
	Pointer EventKind = iota
	Touch
)

// Point is a position on the capture canvas in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerEvent is the tagged variant normalizing mouse/pointer and touch
// input to a single position at the capture boundary.
type PointerEvent struct {
	Kind EventKind
	X    float64
	Y    float64
}

// Position returns the event's canvas position.
func (e PointerEvent) Position() Point {
	return Point{X: e.X, Y: e.Y}
}

// Pad captures freehand strokes on a fixed-size transparent canvas. A
// stroke begins at Start, extends point by point through Draw, and ends at
// Stop. Clear resets the canvas without ending the capture session.
type Pad struct {
	canvas  *image.RGBA
	drawing bool
	last    Point
}

// NewPad creates a blank capture canvas.
func NewPad() *Pad {
	return &Pad{
		canvas: image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight)),
	}
}

// Start begins a stroke at the event position.
func (p *Pad) Start(e PointerEvent) {
	p.drawing = true
	p.last = e.Position()
	p.stamp(p.last)
}

// Draw extends the current stroke to the event position. Events arriving
// outside a stroke are ignored.
func (p *Pad) Draw(e PointerEvent) {
	if !p.drawing {
		return
	}
	pos := e.Position()
	p.segment(p.last, pos)
	p.last = pos
}

// Stop ends the current stroke.
func (p *Pad) Stop() {
	p.drawing = false
}

// Clear resets the canvas to blank. The capture session stays open.
func (p *Pad) Clear() {
	p.canvas = image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
}

// Blank reports whether anything has been drawn since the last Clear.
func (p *Pad) Blank() bool {
	for _, a := range p.canvas.Pix {
		if a != 0 {
			return false
		}
	}
	return true
}

// Save encodes the canvas as the captured signature value.
func (p *Pad) Save() (Value, error) {
	return encodePNG(p.canvas)
}

// segment rasterizes a polyline segment by stamping the round brush along
// its length, which yields round caps and joins.
func (p *Pad) segment(a, b Point) {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		p.stamp(a)
		return
	}

	steps := int(dist*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.stamp(Point{X: a.X + dx*t, Y: a.Y + dy*t})
	}
}

func (p *Pad) stamp(at Point) {
	minX := int(math.Floor(at.X - strokeRadius))
	maxX := int(math.Ceil(at.X + strokeRadius))
	minY := int(math.Floor(at.Y - strokeRadius))
	maxY := int(math.Ceil(at.Y + strokeRadius))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < 0 || y < 0 || x >= CanvasWidth || y >= CanvasHeight {
				continue
			}
			if math.Hypot(float64(x)-at.X, float64(y)-at.Y) <= strokeRadius {
				p.canvas.SetRGBA(x, y, color.RGBA{A: 255})
			}
		}
	}
}
