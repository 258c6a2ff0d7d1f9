package valueprovider

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrBodyTooLarge         = errors.New("request body too large")
	ErrReadBody             = errors.New("failed to read request body")
)
