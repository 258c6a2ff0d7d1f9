package valueprovider

import (
	"mime/multipart"
	"net/url"
	"sort"
	"strings"

	"github.com/dmitrymomot/formbind/pkg/modelname"
)

// Values is a ValueProvider over a url.Values set. Keys are kept sorted so
// prefix checks are a binary search followed by a short scan.
type Values struct {
	values url.Values
	keys   []string
	files  map[string][]*multipart.FileHeader
}

// NewValues returns a provider over values. The map is not copied and must
// not be modified afterwards.
func NewValues(values url.Values) *Values {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Values{values: values, keys: keys}
}

// WithFiles attaches uploaded files to the provider. File keys take part in
// prefix checks.
func (v *Values) WithFiles(files map[string][]*multipart.FileHeader) *Values {
	if len(files) == 0 {
		return v
	}
	v.files = files
	for k := range files {
		if _, ok := v.values[k]; !ok {
			v.keys = append(v.keys, k)
		}
	}
	sort.Strings(v.keys)
	return v
}

// ContainsPrefix implements ValueProvider.
func (v *Values) ContainsPrefix(prefix string) bool {
	if prefix == "" {
		return len(v.keys) > 0
	}
	i := sort.SearchStrings(v.keys, prefix)
	for ; i < len(v.keys) && strings.HasPrefix(v.keys[i], prefix); i++ {
		if modelname.HasPrefix(v.keys[i], prefix) {
			return true
		}
	}
	return false
}

// GetValue implements ValueProvider.
func (v *Values) GetValue(key string) Result {
	vals, ok := v.values[key]
	if !ok || len(vals) == 0 {
		return None
	}
	return Result{Values: vals}
}

// GetFiles implements FileProvider.
func (v *Values) GetFiles(key string) []*multipart.FileHeader {
	return v.files[key]
}

// Files returns the uploaded files keyed by field name.
func (v *Values) Files() map[string][]*multipart.FileHeader {
	return v.files
}

// Keys returns the sorted keys.
func (v *Values) Keys() []string {
	return append([]string(nil), v.keys...)
}

var (
	_ ValueProvider = (*Values)(nil)
	_ FileProvider  = (*Values)(nil)
	_ ValueProvider = Composite(nil)
	_ BodyProvider  = (*RawBody)(nil)
)
