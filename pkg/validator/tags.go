package validator

import (
	"fmt"
	"reflect"
	"strings"
)

// TagRule is one entry of a `validate` tag.
type TagRule struct {
	Name  string
	Param string
}

var knownRules = map[string]bool{
	"omitempty": true,
	"required":  true,
	"min":       true,
	"max":       true,
	"len":       true,
	"oneof":     true,
	"email":     true,
	"url":       true,
	"uuid":      true,
	"ip":        true,
	"phone":     true,
	"alpha":     true,
	"alphanum":  true,
	"numeric":   true,
}

// ParseTag splits a `validate` tag into its rules.
func ParseTag(tag string) ([]TagRule, error) {
	var rules []TagRule
	for part := range strings.SplitSeq(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, param, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !knownRules[name] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		rules = append(rules, TagRule{Name: name, Param: strings.TrimSpace(param)})
	}
	return rules, nil
}

// TagRules builds the rules a `validate` tag declares for value.
// With `omitempty`, zero values skip every rule. Nil pointers skip every
// rule except `required`.
func TagRules(field string, value any, tag string) ([]Rule, error) {
	parsed, err := ParseTag(tag)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(value)
	v, present := deref(rv)
	for _, r := range parsed {
		if r.Name == "omitempty" && (!present || v.IsZero()) {
			return nil, nil
		}
	}

	rules := make([]Rule, 0, len(parsed))
	for _, r := range parsed {
		var (
			rule Rule
			err  error
		)
		switch r.Name {
		case "omitempty":
			continue
		case "required":
			rules = append(rules, Required(field, rv))
			continue
		}
		if !present {
			continue
		}

		switch r.Name {
		case "min":
			rule, err = Min(field, rv, r.Param)
		case "max":
			rule, err = Max(field, rv, r.Param)
		case "len":
			rule, err = Len(field, rv, r.Param)
		case "oneof":
			rule, err = OneOf(field, rv, r.Param)
		case "email":
			rule, err = Email(field, rv)
		case "url":
			rule, err = URL(field, rv, r.Param)
		case "uuid":
			rule, err = UUID(field, rv)
		case "ip":
			rule, err = IP(field, rv)
		default:
			rule, err = Pattern(field, rv, r.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ValidateTag applies the rules of tag to value. Failures are returned as
// ValidationErrors; malformed tags yield a plain error.
func ValidateTag(field string, value any, tag string) error {
	rules, err := TagRules(field, value, tag)
	if err != nil {
		return err
	}
	return Apply(rules...)
}
