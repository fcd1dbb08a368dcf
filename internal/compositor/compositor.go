// Package compositor permanently burns captured field values into page
// rasters, producing the final signed page images.
package compositor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"log/slog"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/geometry"
	"github.com/signet-dev/signet/internal/raster"
)

// textFontSize is the fixed size textual field values render at.
const textFontSize = 24

// Compositor renders every valued field onto its page at the field's
// normalized position. It borrows read access to the document's fields and
// pages and produces replacement page rasters; it never mutates its input.
type Compositor struct {
	scale  geometry.Scale
	logger *slog.Logger
}

// New creates a compositor using the given raster/canvas scale.
func New(scale geometry.Scale, logger *slog.Logger) *Compositor {
	return &Compositor{
		scale:  scale,
		logger: logger.With("system", "compositor"),
	}
}

// Compose burns all valued fields into the document's pages. Pages proceed
// in parallel and the call returns once every page has emitted its final
// raster; the result preserves page order. A page whose base image fails to
// decode fails the whole document; a field whose image value fails to
// decode is skipped while the rest of its page still renders. There is no
// mid-flight cancellation beyond the context.
func (c *Compositor) Compose(ctx context.Context, doc documents.Document) ([]documents.Page, error) {
	results := make([]documents.Page, len(doc.Pages))

	g, ctx := errgroup.WithContext(ctx)
	for i, page := range doc.Pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			composed, err := c.composePage(doc, page)
			if err != nil {
				return err
			}
			results[i] = composed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("document composited", "document_id", doc.ID, "pages", len(results))
	return results, nil
}

func (c *Compositor) composePage(doc documents.Document, page documents.Page) (documents.Page, error) {
	base, err := raster.Decode(page.Image)
	if err != nil {
		return documents.Page{}, fmt.Errorf("page %d: %w: %v", page.Number, ErrPageDecode, err)
	}

	canvas := image.NewRGBA(base.Bounds())
	stddraw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, stddraw.Src)

	pageW := canvas.Bounds().Dx()
	pageH := canvas.Bounds().Dy()

	var fields []documents.Field
	for _, f := range doc.Fields {
		if f.PageNumber == page.Number && f.HasValue() {
			fields = append(fields, f)
		}
	}

	// Text fields draw first so image fields can overlap text, never the
	// other way around.
	for _, f := range fields {
		if f.Type.IsImage() {
			continue
		}
		x, y := f.Rect.PixelPoint(pageW, pageH)
		if err := drawText(canvas, f.Value, x, y); err != nil {
			return documents.Page{}, fmt.Errorf("page %d field %s: %w", page.Number, f.ID, err)
		}
	}

	c.drawImageFields(canvas, page.Number, fields, pageW, pageH)

	encoded, err := raster.EncodePNG(canvas)
	if err != nil {
		return documents.Page{}, fmt.Errorf("page %d: %w", page.Number, err)
	}

	return documents.Page{
		Number: page.Number,
		Image:  encoded,
		Width:  page.Width,
		Height: page.Height,
	}, nil
}

// drawImageFields decodes every image payload on the page, waits for all
// decodes to settle whether they succeed or fail, then draws the survivors
// in field-list order so later fields layer on top of earlier ones.
func (c *Compositor) drawImageFields(canvas *image.RGBA, pageNumber int, fields []documents.Field, pageW, pageH int) {
	decoded := make([]image.Image, len(fields))

	var wg sync.WaitGroup
	for i, f := range fields {
		if !f.Type.IsImage() {
			continue
		}
		wg.Go(func() {
			img, err := raster.Decode(f.Value)
			if err != nil {
				c.logger.Warn("field image skipped",
					"page", pageNumber, "field_id", f.ID, "error", err)
				return
			}
			decoded[i] = img
		})
	}
	wg.Wait()

	for i, f := range fields {
		if decoded[i] == nil {
			continue
		}
		x, y := f.Rect.PixelPoint(pageW, pageH)
		w, h := c.scale.Apply(f.Rect.W, f.Rect.H)

		target := image.Rect(int(x), int(y), int(x+w), int(y+h))
		draw.CatmullRom.Scale(canvas, target, decoded[i], decoded[i].Bounds(), draw.Over, nil)
	}
}

// textFont is parsed once for the package; the embedded face is known
// valid, so a parse failure is a programming error.
var textFont = func() *opentype.Font {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse text font: %v", err))
	}
	return parsed
}()

func drawText(canvas *image.RGBA, value string, x, y float64) error {
	face, err := opentype.NewFace(textFont, &opentype.FaceOptions{
		Size:    textFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("build text face: %w", err)
	}
	defer face.Close()

	// Baseline sits one ascent below the field's top-left corner.
	drawer := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(int(x), int(y)+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(value)
	return nil
}
