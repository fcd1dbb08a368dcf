package signature

import (
	"errors"
	"net/http"
)

// Capture errors returned by the producers.
var (
	ErrTooLarge      = errors.New("signature image exceeds maximum size")
	ErrUndecodable   = errors.New("signature image cannot be decoded")
	ErrInvalidSize   = errors.New("font size out of range")
	ErrUnknownFamily = errors.New("unknown font family")
)

// MapHTTPStatus converts capture errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrUndecodable) ||
		errors.Is(err, ErrInvalidSize) ||
		errors.Is(err, ErrUnknownFamily) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
