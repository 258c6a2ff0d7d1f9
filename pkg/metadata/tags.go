package metadata

import (
	"reflect"
	"strings"
)

const (
	// DefaultTagName is the serialization tag aliases are read from.
	DefaultTagName = "json"

	bindTag     = "bind"
	validateTag = "validate"
	exprTag     = "vd"
)

// bind tag options
const (
	optRequired = "required"
	optNever    = "never"
	optReadOnly = "readonly"
	optBody     = "body"
)

// parseAliasTag returns the alias declared by the tag and whether the field is skipped.
// `name,omitempty` yields "name"; `,omitempty` yields no alias; `-` skips the field.
func parseAliasTag(field reflect.StructField, tagName string) (alias string, skip bool) {
	tag, ok := field.Tag.Lookup(tagName)
	if !ok || tag == "" {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return strings.TrimSpace(name), false
}

// parseBindTag applies `bind` options to p.
func parseBindTag(field reflect.StructField, p *Property) {
	tag := field.Tag.Get(bindTag)
	if tag == "" {
		return
	}
	for opt := range strings.SplitSeq(tag, ",") {
		switch strings.TrimSpace(opt) {
		case optRequired:
			if p.Binding != BindingNever {
				p.Binding = BindingRequired
			}
		case optNever, "-":
			p.Binding = BindingNever
		case optReadOnly:
			p.ReadOnly = true
		case optBody:
			p.Source = SourceBody
		}
	}
}
