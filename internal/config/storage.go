package config

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

const (
	// EnvStorageBasePath overrides the storage base path.
	EnvStorageBasePath = "STORAGE_BASE_PATH"

	// EnvStorageMaxUploadSize overrides the source document upload ceiling.
	EnvStorageMaxUploadSize = "STORAGE_MAX_UPLOAD_SIZE"

	// EnvStorageMaxSignatureSize overrides the signature image upload
	// ceiling.
	EnvStorageMaxSignatureSize = "STORAGE_MAX_SIGNATURE_SIZE"
)

// StorageConfig contains blob storage configuration.
type StorageConfig struct {
	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath string `toml:"base_path"`

	// MaxUploadSize is the human-readable ceiling for source document
	// uploads, e.g. "50MB".
	MaxUploadSize string `toml:"max_upload_size"`

	// MaxSignatureSize is the human-readable ceiling for uploaded signature
	// images, e.g. "10MB".
	MaxSignatureSize string `toml:"max_signature_size"`

	maxUploadSizeVal    int64
	maxSignatureSizeVal int64
}

// MaxUploadSizeBytes returns the parsed upload ceiling in bytes.
func (c *StorageConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// MaxSignatureSizeBytes returns the parsed signature ceiling in bytes.
func (c *StorageConfig) MaxSignatureSizeBytes() int64 {
	return c.maxSignatureSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the
// storage configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MaxSignatureSize != "" {
		c.MaxSignatureSize = overlay.MaxSignatureSize
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.MaxSignatureSize == "" {
		c.MaxSignatureSize = "10MB"
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvStorageMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvStorageMaxSignatureSize); v != "" {
		c.MaxSignatureSize = v
	}
}

func (c *StorageConfig) validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	sigSize, err := units.FromHumanSize(c.MaxSignatureSize)
	if err != nil {
		return fmt.Errorf("invalid max_signature_size: %w", err)
	}
	if sigSize <= 0 {
		return fmt.Errorf("max_signature_size must be positive")
	}
	c.maxSignatureSizeVal = sigSize

	return nil
}
