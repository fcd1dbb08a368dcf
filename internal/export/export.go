// Package export assembles composited page rasters into the final signed
// PDF artifact, one page per raster at the raster's own dimensions.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/signet-dev/signet/internal/documents"
	"github.com/signet-dev/signet/internal/raster"
)

// ErrNoPages indicates an export attempt on a document without pages.
var ErrNoPages = errors.New("document has no pages to export")

// BuildPDF decodes each page's composited raster and imports the sequence
// into a single PDF.
func BuildPDF(pages []documents.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	images := make([]io.Reader, 0, len(pages))
	for _, p := range pages {
		data, err := raster.Bytes(p.Image)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Number, err)
		}
		images = append(images, bytes.NewReader(data))
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, images, pdfcpu.DefaultImportConfig(), nil); err != nil {
		return nil, fmt.Errorf("import page images: %w", err)
	}
	return buf.Bytes(), nil
}
