// Package signature captures values for image-valued fields through three
// interchangeable producers: freehand drawing, image upload, and rendered
// typed text. Every producer terminates in Save, which yields a Value of
// the same shape regardless of how it was captured.
package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// Capture canvas dimensions shared by the pad and typed producers.
const (
	CanvasWidth  = 500
	CanvasHeight = 200
)

// Value is an encoded raster image carried as a data URI, ready to store
// as a SIGNATURE or INITIALS field value.
type Value string

// Producer yields a captured signature value. The caller writes the value
// into the target field through the document session.
type Producer interface {
	Save() (Value, error)
}

func encodePNG(img image.Image) (Value, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode signature: %w", err)
	}
	return Value("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
