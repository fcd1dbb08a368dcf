package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// EnvRasterizeDPI overrides the page render resolution.
	EnvRasterizeDPI = "RASTERIZE_DPI"

	// EnvRasterizeWorkers overrides the page render worker count.
	EnvRasterizeWorkers = "RASTERIZE_WORKERS"
)

// RasterizeConfig contains page rendering configuration.
type RasterizeConfig struct {
	DPI     int `toml:"dpi"`
	Workers int `toml:"workers"`
}

// Finalize applies defaults, loads environment overrides, and validates the
// rasterize configuration.
func (c *RasterizeConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *RasterizeConfig) Merge(overlay *RasterizeConfig) {
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *RasterizeConfig) loadDefaults() {
	if c.DPI == 0 {
		c.DPI = 150
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

func (c *RasterizeConfig) loadEnv() {
	if v := os.Getenv(EnvRasterizeDPI); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DPI = n
		}
	}
	if v := os.Getenv(EnvRasterizeWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *RasterizeConfig) validate() error {
	if c.DPI < 36 || c.DPI > 600 {
		return fmt.Errorf("dpi must be between 36 and 600")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
