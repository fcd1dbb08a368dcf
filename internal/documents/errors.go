package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound         = errors.New("document not found")
	ErrDuplicate        = errors.New("document already exists")
	ErrValidation       = errors.New("invalid document input")
	ErrImmutable        = errors.New("document is completed and immutable")
	ErrInvalidStatus    = errors.New("invalid document status")
	ErrInvalidFieldType = errors.New("invalid field type")
	ErrTransition       = errors.New("illegal status transition")
	ErrFileTooLarge     = errors.New("file exceeds upload limit")
	ErrInvalidFile      = errors.New("invalid or unreadable file")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrImmutable) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidFieldType) ||
		errors.Is(err, ErrTransition) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
