package signature

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Typed signature size bounds in points.
const (
	MinFontSize = 20
	MaxFontSize = 120

	defaultFontSize = 48
	fontDPI         = 72
)

// FontFamily selects the face a typed signature renders with.
type FontFamily string

// Available typed signature faces.
const (
	FamilyFlowing FontFamily = "flowing"
	FamilyClassic FontFamily = "classic"
	FamilyBold    FontFamily = "bold"
)

var familyTTF = map[FontFamily][]byte{
	FamilyFlowing: goitalic.TTF,
	FamilyClassic: goregular.TTF,
	FamilyBold:    gobolditalic.TTF,
}

// Typed renders a text string into the fixed-size capture canvas, centered
// horizontally and vertically. Every setter re-renders synchronously so the
// canvas always reflects the latest text, family, and size.
type Typed struct {
	text   string
	family FontFamily
	size   float64
	canvas *image.RGBA
}

// NewTyped creates a typed producer with the default face and size.
func NewTyped() *Typed {
	t := &Typed{
		family: FamilyFlowing,
		size:   defaultFontSize,
		canvas: image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight)),
	}
	return t
}

// SetText replaces the rendered text.
func (t *Typed) SetText(text string) error {
	t.text = text
	return t.render()
}

// SetFamily switches the rendering face.
func (t *Typed) SetFamily(family FontFamily) error {
	if _, ok := familyTTF[family]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFamily, family)
	}
	t.family = family
	return t.render()
}

// SetSize adjusts the font size within [MinFontSize, MaxFontSize].
func (t *Typed) SetSize(size float64) error {
	if size < MinFontSize || size > MaxFontSize {
		return fmt.Errorf("%w: %.0f (must be %d-%d)", ErrInvalidSize, size, MinFontSize, MaxFontSize)
	}
	t.size = size
	return t.render()
}

// Save encodes the current canvas as the captured value.
func (t *Typed) Save() (Value, error) {
	return encodePNG(t.canvas)
}

func (t *Typed) render() error {
	t.canvas = image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	if t.text == "" {
		return nil
	}

	parsed, err := opentype.Parse(familyTTF[t.family])
	if err != nil {
		return fmt.Errorf("parse font %s: %w", t.family, err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    t.size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("build face %s: %w", t.family, err)
	}
	defer face.Close()

	drawer := font.Drawer{
		Dst:  t.canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	advance := drawer.MeasureString(t.text)
	metrics := face.Metrics()

	x := (CanvasWidth - advance.Ceil()) / 2
	if x < 0 {
		x = 0
	}
	baseline := (CanvasHeight + metrics.Ascent.Ceil() - metrics.Descent.Ceil()) / 2

	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(t.text)
	return nil
}
