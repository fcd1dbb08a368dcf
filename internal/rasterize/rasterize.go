// Package rasterize is the page source: it renders an uploaded source
// document into the per-page raster images the signing core works with.
// The core never parses the source format itself.
package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	dcconfig "github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	dcimage "github.com/JaimeStill/document-context/pkg/image"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/raster"
)

// ErrUnsupportedFormat indicates a source document that cannot be
// rasterized.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrRenderFailed indicates a page failed to render.
var ErrRenderFailed = errors.New("page render failed")

// Options controls page rendering.
type Options struct {
	DPI     int
	Workers int
}

func (o Options) normalize(pageCount int) Options {
	if o.DPI <= 0 {
		o.DPI = 150
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Workers > pageCount {
		o.Workers = pageCount
	}
	return o
}

// System renders source documents to pages.
type System struct {
	opts   Options
	logger *slog.Logger
}

// New creates a rasterizer.
func New(opts Options, logger *slog.Logger) *System {
	return &System{
		opts:   opts,
		logger: logger.With("system", "rasterize"),
	}
}

type renderTask struct {
	pageNum int
	page    documents.Page
	err     error
}

// Rasterize renders every page of the source file at path into a raster
// image, recording each raster's pixel dimensions. Pages render in
// parallel; the result is ordered by page number.
func (s *System) Rasterize(ctx context.Context, path, contentType string, pageCount int) ([]documents.Page, error) {
	if !document.IsSupported(contentType) {
		return nil, ErrUnsupportedFormat
	}
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrRenderFailed)
	}

	opts := s.opts.normalize(pageCount)

	tasks := make(chan int, pageCount)
	results := make(chan renderTask, pageCount)

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Go(func() {
			s.renderWorker(ctx, path, contentType, opts, tasks, results)
		})
	}

	for n := 1; n <= pageCount; n++ {
		tasks <- n
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(results)
	}()

	rendered := make(map[int]documents.Page, pageCount)
	for task := range results {
		if task.err != nil {
			return nil, task.err
		}
		rendered[task.pageNum] = task.page
	}

	pages := make([]documents.Page, 0, pageCount)
	for n := 1; n <= pageCount; n++ {
		pages = append(pages, rendered[n])
	}

	s.logger.Info("document rasterized", "path", path, "pages", pageCount, "dpi", opts.DPI)
	return pages, nil
}

func (s *System) renderWorker(
	ctx context.Context,
	path, contentType string,
	opts Options,
	tasks <-chan int,
	results chan<- renderTask,
) {
	doc, err := document.Open(path, contentType)
	if err != nil {
		for pageNum := range tasks {
			results <- renderTask{pageNum: pageNum, err: fmt.Errorf("%w: %v", ErrRenderFailed, err)}
		}
		return
	}
	defer doc.Close()

	renderer, err := dcimage.NewImageMagickRenderer(dcconfig.ImageConfig{
		Format: "png",
		DPI:    opts.DPI,
	})
	if err != nil {
		for pageNum := range tasks {
			results <- renderTask{pageNum: pageNum, err: fmt.Errorf("%w: %v", ErrRenderFailed, err)}
		}
		return
	}

	for pageNum := range tasks {
		if ctx.Err() != nil {
			results <- renderTask{pageNum: pageNum, err: ctx.Err()}
			continue
		}

		page, err := s.renderPage(doc, renderer, pageNum)
		results <- renderTask{pageNum: pageNum, page: page, err: err}
	}
}

func (s *System) renderPage(doc document.Document, renderer dcimage.Renderer, pageNum int) (documents.Page, error) {
	page, err := doc.ExtractPage(pageNum)
	if err != nil {
		return documents.Page{}, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, pageNum, err)
	}

	data, err := page.ToImage(renderer, nil)
	if err != nil {
		return documents.Page{}, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, pageNum, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return documents.Page{}, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, pageNum, err)
	}

	return documents.Page{
		Number: pageNum,
		Image:  raster.FromPNG(data),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
