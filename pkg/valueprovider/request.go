package valueprovider

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// DefaultMaxMemory is the memory budget for parsing multipart forms (10MB).
	DefaultMaxMemory = 10 << 20
	// DefaultMaxBodySize caps raw bodies read by Body (1MB).
	DefaultMaxBodySize = 1 << 20
)

// Query returns a provider over the URL query string.
func Query(r *http.Request) *Values {
	return NewValues(r.URL.Query())
}

// Form returns a provider over the request body form. It accepts
// application/x-www-form-urlencoded and multipart/form-data; uploaded
// files are exposed through GetFiles with sanitized filenames.
// Query string values are not included.
func Form(r *http.Request, maxMemory int64) (*Values, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil, fmt.Errorf("%w: expected application/x-www-form-urlencoded or multipart/form-data", ErrMissingContentType)
	}
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}

	switch mediaType := mediaType(contentType); {
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		return NewValues(r.PostForm), nil

	case mediaType == "multipart/form-data":
		_, params, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed content type with boundary", ErrInvalidForm)
		}
		boundary, ok := params["boundary"]
		if !ok || boundary == "" {
			return nil, fmt.Errorf("%w: missing boundary in content type", ErrInvalidForm)
		}
		if !validateBoundary(boundary) {
			return nil, fmt.Errorf("%w: invalid boundary parameter", ErrInvalidForm)
		}
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		if r.MultipartForm == nil {
			return NewValues(url.Values{}), nil
		}
		for _, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				fh.Filename = sanitizeFilename(fh.Filename)
			}
		}
		return NewValues(r.MultipartForm.Value).WithFiles(r.MultipartForm.File), nil

	default:
		return nil, fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mediaType)
	}
}

// Route returns a provider over the URL parameters matched by the chi router.
// Requests not routed by chi yield an empty provider.
func Route(r *http.Request) *Values {
	values := url.Values{}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "" || key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			values.Add(key, rctx.URLParams.Values[i])
		}
	}
	return NewValues(values)
}

// RawBody exposes the request body to greedy binders. It holds no named values.
type RawBody struct {
	data        []byte
	contentType string
}

// Body reads at most limit bytes of the request body. The body is replaced
// with an in-memory copy so later readers still see it.
func Body(r *http.Request, limit int64) (*RawBody, error) {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	if r.Body == nil || r.Body == http.NoBody {
		return &RawBody{contentType: mediaType(r.Header.Get("Content-Type"))}, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadBody, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, limit)
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))

	return &RawBody{data: data, contentType: mediaType(r.Header.Get("Content-Type"))}, nil
}

// NewRawBody wraps data as a body provider.
func NewRawBody(data []byte, contentType string) *RawBody {
	return &RawBody{data: data, contentType: mediaType(contentType)}
}

// ContainsPrefix implements ValueProvider. A body has no named values.
func (b *RawBody) ContainsPrefix(string) bool { return false }

// GetValue implements ValueProvider.
func (b *RawBody) GetValue(string) Result { return None }

// Body implements BodyProvider.
func (b *RawBody) Body() ([]byte, string) {
	return b.data, b.contentType
}

// RequestOption configures FromRequest.
type RequestOption func(*requestOptions)

type requestOptions struct {
	maxMemory   int64
	maxBodySize int64
}

// WithMaxMemory sets the multipart memory budget.
func WithMaxMemory(n int64) RequestOption {
	return func(o *requestOptions) { o.maxMemory = n }
}

// WithMaxBodySize caps the raw body size.
func WithMaxBodySize(n int64) RequestOption {
	return func(o *requestOptions) { o.maxBodySize = n }
}

// FromRequest combines every source of the request. Precedence: route
// values, form values, query values. Bodies that are not forms are exposed
// as a RawBody.
func FromRequest(r *http.Request, opts ...RequestOption) (Composite, error) {
	o := requestOptions{maxMemory: DefaultMaxMemory, maxBodySize: DefaultMaxBodySize}
	for _, opt := range opts {
		opt(&o)
	}

	providers := Composite{Route(r)}

	if hasBody(r) {
		switch mediaType(r.Header.Get("Content-Type")) {
		case "application/x-www-form-urlencoded", "multipart/form-data":
			form, err := Form(r, o.maxMemory)
			if err != nil {
				return nil, err
			}
			providers = append(providers, form)
		default:
			body, err := Body(r, o.maxBodySize)
			if err != nil {
				return nil, err
			}
			providers = append(providers, body)
		}
	}

	return append(providers, Query(r)), nil
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
		return false
	}
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func mediaType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// validateBoundary checks the multipart boundary against RFC 2046.
func validateBoundary(boundary string) bool {
	if len(boundary) == 0 || len(boundary) > 70 {
		return false
	}
	for _, r := range boundary {
		if !isBoundaryChar(r) {
			return false
		}
	}
	return !strings.HasSuffix(boundary, " ")
}

func isBoundaryChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("'()+_,-./:=? ", r)
}

// sanitizeFilename strips directory components and null bytes so uploaded
// names cannot be used for path traversal.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")
	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}
