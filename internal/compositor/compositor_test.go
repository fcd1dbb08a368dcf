package compositor_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/compositor"
	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/geometry"
	"github.com/signet-dev/signet/internal/raster"
)

func solidURI(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	uri, err := raster.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return uri
}

func decodePage(t *testing.T, page documents.Page) image.Image {
	t.Helper()
	img, err := raster.Decode(page.Image)
	if err != nil {
		t.Fatalf("decode composed page: %v", err)
	}
	return img
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

func newCompositor() *compositor.Compositor {
	return compositor.New(geometry.DefaultScale(), slog.New(slog.DiscardHandler))
}

func TestCompositor_BurnsImageFieldAtScaledExtent(t *testing.T) {
	doc := documents.Document{
		ID: uuid.New(),
		Pages: []documents.Page{
			{Number: 1, Image: solidURI(t, 800, 1000, white), Width: 800, Height: 1000},
		},
		Fields: []documents.Field{
			{
				ID:         uuid.New(),
				Type:       documents.FieldSignature,
				PageNumber: 1,
				Rect:       geometry.Rect{X: 10, Y: 10, W: 150, H: 40},
				Value:      solidURI(t, 50, 20, red),
			},
		},
	}

	pages, err := newCompositor().Compose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}

	img := decodePage(t, pages[0])

	// x=10% of 800 and y=10% of 1000 place the origin at (80, 100); the
	// 150x40 canvas extent doubles to 300x80 at the default scale.
	inside := []image.Point{{X: 81, Y: 101}, {X: 230, Y: 140}, {X: 379, Y: 179}}
	for _, p := range inside {
		if got := color.RGBAModel.Convert(img.At(p.X, p.Y)); got != red {
			t.Errorf("pixel %v = %v, want burned-in red", p, got)
		}
	}

	outside := []image.Point{{X: 70, Y: 90}, {X: 390, Y: 140}, {X: 230, Y: 190}}
	for _, p := range outside {
		if got := color.RGBAModel.Convert(img.At(p.X, p.Y)); got != white {
			t.Errorf("pixel %v = %v, want untouched white", p, got)
		}
	}
}

func TestCompositor_TextFieldMarksPage(t *testing.T) {
	doc := documents.Document{
		Pages: []documents.Page{
			{Number: 1, Image: solidURI(t, 400, 400, white), Width: 400, Height: 400},
		},
		Fields: []documents.Field{
			{
				ID:         uuid.New(),
				Type:       documents.FieldText,
				PageNumber: 1,
				Rect:       geometry.Rect{X: 10, Y: 10, W: 150, H: 40},
				Value:      "Signed",
			},
		},
	}

	pages, err := newCompositor().Compose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	img := decodePage(t, pages[0])
	marked := false
	for y := 0; y < 400 && !marked; y++ {
		for x := 0; x < 400; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) != white {
				marked = true
				break
			}
		}
	}
	if !marked {
		t.Error("text field left no ink on the page")
	}
}

func TestCompositor_PageWithoutFieldsStillEmits(t *testing.T) {
	doc := documents.Document{
		Pages: []documents.Page{
			{Number: 1, Image: solidURI(t, 200, 200, white), Width: 200, Height: 200},
			{Number: 2, Image: solidURI(t, 200, 200, white), Width: 200, Height: 200},
		},
		Fields: []documents.Field{
			{
				ID:         uuid.New(),
				Type:       documents.FieldSignature,
				PageNumber: 2,
				Rect:       geometry.Rect{X: 0, Y: 0, W: 80, H: 40},
				Value:      solidURI(t, 10, 10, red),
			},
		},
	}

	pages, err := newCompositor().Compose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0].Number != 1 || pages[1].Number != 2 {
		t.Errorf("page order = [%d, %d], want [1, 2]", pages[0].Number, pages[1].Number)
	}

	img := decodePage(t, pages[0])
	if got := color.RGBAModel.Convert(img.At(100, 100)); got != white {
		t.Errorf("untargeted page pixel = %v, want white", got)
	}
}

func TestCompositor_SkipsUndecodableFieldValue(t *testing.T) {
	good := documents.Field{
		ID:         uuid.New(),
		Type:       documents.FieldSignature,
		PageNumber: 1,
		Rect:       geometry.Rect{X: 0, Y: 0, W: 100, H: 50},
		Value:      solidURI(t, 10, 10, red),
	}
	bad := documents.Field{
		ID:         uuid.New(),
		Type:       documents.FieldInitials,
		PageNumber: 1,
		Rect:       geometry.Rect{X: 50, Y: 50, W: 100, H: 50},
		Value:      "data:image/png;base64,!!!not-base64!!!",
	}

	doc := documents.Document{
		Pages: []documents.Page{
			{Number: 1, Image: solidURI(t, 400, 400, white), Width: 400, Height: 400},
		},
		Fields: []documents.Field{good, bad},
	}

	pages, err := newCompositor().Compose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Compose() error = %v, want bad field skipped", err)
	}

	img := decodePage(t, pages[0])
	if got := color.RGBAModel.Convert(img.At(10, 10)); got != red {
		t.Errorf("surviving field pixel = %v, want red", got)
	}
}

func TestCompositor_UndecodablePageFails(t *testing.T) {
	doc := documents.Document{
		Pages: []documents.Page{
			{Number: 1, Image: "data:image/png;base64,!!!broken!!!", Width: 200, Height: 200},
		},
	}

	if _, err := newCompositor().Compose(context.Background(), doc); !errors.Is(err, compositor.ErrPageDecode) {
		t.Errorf("Compose() error = %v, want ErrPageDecode", err)
	}
}

func TestCompositor_IgnoresEmptyFieldValues(t *testing.T) {
	doc := documents.Document{
		Pages: []documents.Page{
			{Number: 1, Image: solidURI(t, 200, 200, white), Width: 200, Height: 200},
		},
		Fields: []documents.Field{
			{
				ID:         uuid.New(),
				Type:       documents.FieldSignature,
				PageNumber: 1,
				Rect:       geometry.Rect{X: 0, Y: 0, W: 100, H: 50},
			},
		},
	}

	pages, err := newCompositor().Compose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	img := decodePage(t, pages[0])
	if got := color.RGBAModel.Convert(img.At(10, 10)); got != white {
		t.Errorf("pixel = %v, want untouched white for empty field", got)
	}
}

func TestCompositor_TextFieldsAcrossPages(t *testing.T) {
	doc := documents.Document{
		Pages: []documents.Page{
			{Number: 1, Image: solidURI(t, 400, 400, white), Width: 400, Height: 400},
			{Number: 2, Image: solidURI(t, 400, 400, white), Width: 400, Height: 400},
		},
		Fields: []documents.Field{
			{
				ID:         uuid.New(),
				Type:       documents.FieldText,
				PageNumber: 1,
				Rect:       geometry.Rect{X: 10, Y: 10, W: 150, H: 40},
				Value:      "First",
			},
			{
				ID:         uuid.New(),
				Type:       documents.FieldDate,
				PageNumber: 1,
				Rect:       geometry.Rect{X: 10, Y: 60, W: 150, H: 40},
				Value:      "2026-08-31",
			},
			{
				ID:         uuid.New(),
				Type:       documents.FieldText,
				PageNumber: 2,
				Rect:       geometry.Rect{X: 10, Y: 10, W: 150, H: 40},
				Value:      "Second",
			},
		},
	}

	pages, err := newCompositor().Compose(context.Background(), doc)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	for _, page := range pages {
		img := decodePage(t, page)
		marked := false
		for y := 0; y < 400 && !marked; y++ {
			for x := 0; x < 400; x++ {
				if color.RGBAModel.Convert(img.At(x, y)) != white {
					marked = true
					break
				}
			}
		}
		if !marked {
			t.Errorf("page %d left no ink from its text fields", page.Number)
		}
	}
}
