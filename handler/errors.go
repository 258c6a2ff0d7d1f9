package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/formbind/pkg/valueprovider"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with an explicit status code and a machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

// NewHTTPError returns an HTTPError keyed by the status text when key is empty.
func NewHTTPError(code int, key string) HTTPError {
	if key == "" {
		key = http.StatusText(code)
	}
	return HTTPError{Code: code, Key: key}
}

func (e HTTPError) Error() string {
	return e.Key
}

// requestErrorStatus maps request decoding failures to client error statuses.
func requestErrorStatus(err error) (HTTPError, bool) {
	switch {
	case errors.Is(err, valueprovider.ErrUnsupportedMediaType):
		return NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type"), true
	case errors.Is(err, valueprovider.ErrBodyTooLarge):
		return NewHTTPError(http.StatusRequestEntityTooLarge, "body_too_large"), true
	case errors.Is(err, valueprovider.ErrMissingContentType),
		errors.Is(err, valueprovider.ErrInvalidForm),
		errors.Is(err, valueprovider.ErrReadBody):
		return NewHTTPError(http.StatusBadRequest, "bad_request"), true
	}
	return HTTPError{}, false
}
