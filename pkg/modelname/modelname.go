// Package modelname builds composite request field names.
//
// Nested objects are addressed with a dot (`parent.child`) and indexed
// elements with brackets (`items[0]`). The same rules drive value lookup,
// error keys and prefix matching, so every package that deals with field
// paths goes through here.
package modelname

import (
	"strconv"
	"strings"
)

// Property returns the composite name for a property of the model at prefix.
func Property(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	case strings.HasPrefix(name, "["):
		return prefix + name
	default:
		return prefix + "." + name
	}
}

// Index returns the composite name for the element at index i.
func Index(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

// Key returns the composite name for a keyed element, e.g. `prefix[key]`.
func Key(prefix, key string) string {
	return prefix + "[" + key + "]"
}

// Join combines a model prefix with a validator member name.
// Member names may themselves be composite.
func Join(prefix, member string) string {
	return Property(prefix, member)
}

// HasPrefix reports whether key addresses prefix itself or something nested under it.
// An empty prefix matches every key.
func HasPrefix(key, prefix string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	if len(key) == len(prefix) {
		return true
	}
	switch key[len(prefix)] {
	case '.', '[':
		return true
	}
	return false
}

// Head splits a composite name into its first segment and the remainder.
// `a.b[0].c` yields ("a", "b[0].c"); `[0].c` yields ("[0]", "c").
func Head(name string) (head, tail string) {
	if strings.HasPrefix(name, "[") {
		if end := strings.IndexByte(name, ']'); end != -1 {
			return name[:end+1], strings.TrimPrefix(name[end+1:], ".")
		}
		return name, ""
	}
	idx := strings.IndexAny(name, ".[")
	if idx == -1 {
		return name, ""
	}
	if name[idx] == '.' {
		return name[:idx], name[idx+1:]
	}
	return name[:idx], name[idx:]
}
