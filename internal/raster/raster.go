// Package raster encodes and decodes the data URI payloads page images and
// signature values travel as.
package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	// Register decoders for the formats payloads may arrive in.
	_ "image/gif"
	_ "image/jpeg"
)

// ErrInvalidDataURI indicates a payload that is not a base64 image data URI.
var ErrInvalidDataURI = errors.New("invalid image data URI")

const dataURIMarker = ";base64,"

// Bytes extracts the raw encoded image bytes from a data URI.
func Bytes(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return nil, ErrInvalidDataURI
	}

	idx := strings.Index(uri, dataURIMarker)
	if idx < 0 {
		return nil, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(uri[idx+len(dataURIMarker):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, nil
}

// Decode decodes a data URI into an image.
func Decode(uri string) (image.Image, error) {
	data, err := Bytes(uri)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes an image as a PNG data URI.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return FromPNG(buf.Bytes()), nil
}

// FromPNG wraps already-encoded PNG bytes in a data URI.
func FromPNG(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}
