package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	// Register decoders for the formats an uploaded signature may arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DefaultMaxUploadBytes is the upload producer's size ceiling when the
// configuration does not override it.
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// Upload accepts a user-provided raster image used verbatim as the field
// value. Payloads above the size ceiling, or that do not decode as an
// image, are rejected before anything is stored.
type Upload struct {
	maxBytes int64
	data     []byte
	format   string
}

// NewUpload creates an upload producer with the given size ceiling in
// bytes. A non-positive ceiling falls back to the default.
func NewUpload(maxBytes int64) *Upload {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Upload{maxBytes: maxBytes}
}

// Accept validates and stores the uploaded payload. A rejected payload
// leaves the producer empty.
func (u *Upload) Accept(data []byte) error {
	if int64(len(data)) > u.maxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), u.maxBytes)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	u.data = append([]byte(nil), data...)
	u.format = format
	return nil
}

// Save encodes the accepted payload verbatim as the captured value.
func (u *Upload) Save() (Value, error) {
	if u.data == nil {
		return "", fmt.Errorf("%w: no image accepted", ErrUndecodable)
	}
	return Value(fmt.Sprintf("data:image/%s;base64,%s", u.format, base64.StdEncoding.EncodeToString(u.data))), nil
}
