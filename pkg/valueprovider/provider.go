package valueprovider

import "mime/multipart"

// ValueProvider answers whether values were submitted under a composite name.
type ValueProvider interface {
	// ContainsPrefix reports whether any key equals prefix or is nested under it.
	ContainsPrefix(prefix string) bool
	// GetValue returns the values stored under the exact key.
	GetValue(key string) Result
}

// FileProvider is implemented by providers carrying uploaded files.
type FileProvider interface {
	GetFiles(key string) []*multipart.FileHeader
}

// BodyProvider is implemented by providers exposing the raw request body.
// Binders reading from it are greedy: they consume the whole body rather
// than a named field.
type BodyProvider interface {
	Body() (data []byte, contentType string)
}

// Result holds the raw values found for a key.
type Result struct {
	Values []string
}

// None is the empty result.
var None = Result{}

// First returns the first value or an empty string.
func (r Result) First() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// Len returns the number of values.
func (r Result) Len() int {
	return len(r.Values)
}

// IsEmpty reports whether no value was found.
func (r Result) IsEmpty() bool {
	return len(r.Values) == 0
}
