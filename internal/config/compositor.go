package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/signet-dev/signet/internal/geometry"
)

const (
	// EnvCompositorPageRasterScale overrides the page raster scale factor.
	EnvCompositorPageRasterScale = "COMPOSITOR_PAGE_RASTER_SCALE"

	// EnvCompositorEditingCanvasScale overrides the editing canvas scale
	// factor.
	EnvCompositorEditingCanvasScale = "COMPOSITOR_EDITING_CANVAS_SCALE"
)

// CompositorConfig contains burn-in engine configuration. Field widths and
// heights are captured in editing canvas pixels; the ratio of the two scale
// factors converts them to page raster pixels.
type CompositorConfig struct {
	PageRasterScale    float64 `toml:"page_raster_scale"`
	EditingCanvasScale float64 `toml:"editing_canvas_scale"`
}

// Scale returns the configured geometry scale.
func (c *CompositorConfig) Scale() geometry.Scale {
	return geometry.Scale{
		PageRaster:    c.PageRasterScale,
		EditingCanvas: c.EditingCanvasScale,
	}
}

// Finalize applies defaults, loads environment overrides, and validates the
// compositor configuration.
func (c *CompositorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *CompositorConfig) Merge(overlay *CompositorConfig) {
	if overlay.PageRasterScale != 0 {
		c.PageRasterScale = overlay.PageRasterScale
	}
	if overlay.EditingCanvasScale != 0 {
		c.EditingCanvasScale = overlay.EditingCanvasScale
	}
}

func (c *CompositorConfig) loadDefaults() {
	def := geometry.DefaultScale()
	if c.PageRasterScale == 0 {
		c.PageRasterScale = def.PageRaster
	}
	if c.EditingCanvasScale == 0 {
		c.EditingCanvasScale = def.EditingCanvas
	}
}

func (c *CompositorConfig) loadEnv() {
	if v := os.Getenv(EnvCompositorPageRasterScale); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.PageRasterScale = f
		}
	}
	if v := os.Getenv(EnvCompositorEditingCanvasScale); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.EditingCanvasScale = f
		}
	}
}

func (c *CompositorConfig) validate() error {
	if c.PageRasterScale <= 0 {
		return fmt.Errorf("page_raster_scale must be positive")
	}
	if c.EditingCanvasScale <= 0 {
		return fmt.Errorf("editing_canvas_scale must be positive")
	}
	return nil
}
