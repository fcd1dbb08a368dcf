package compositor

import "errors"

// ErrPageDecode indicates a page's base raster could not be decoded. This
// is fatal for the document's compositing run; it is surfaced, not retried.
var ErrPageDecode = errors.New("page image cannot be decoded")
