package signing

import (
	"errors"
	"net/http"

	"github.com/signet-dev/signet/internal/documents"
)

// Domain errors for signing operations.
var (
	ErrTokenInvalid     = errors.New("invalid or expired signing token")
	ErrAlreadySigned    = errors.New("signature request already signed")
	ErrInvalidStatus    = errors.New("invalid signing status")
	ErrRecipientMissing = errors.New("signer is not a recipient of the document")
	ErrNotTemplate      = errors.New("document is not a template")
)

// MapHTTPStatus converts signing and underlying document errors to HTTP
// status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrTokenInvalid) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrAlreadySigned) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrRecipientMissing) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrNotTemplate) {
		return http.StatusBadRequest
	}
	return documents.MapHTTPStatus(err)
}
