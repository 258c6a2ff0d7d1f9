package validator

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrUnknownRule is returned for tag entries naming no known rule.
	ErrUnknownRule = errors.New("unknown validation rule")

	// ErrInvalidRuleParam is returned when a rule parameter cannot be parsed.
	ErrInvalidRuleParam = errors.New("invalid validation rule parameter")

	// ErrRuleNotApplicable is returned when a rule does not apply to the field kind,
	// e.g. `email` on an int.
	ErrRuleNotApplicable = errors.New("validation rule not applicable")
)

// ValidationError is one failed rule. TranslationKey and TranslationValues
// let callers render Message in another language.
type ValidationError struct {
	Field             string
	Message           string
	TranslationKey    string
	TranslationValues map[string]any
}

// ValidationErrors is returned by Apply and ValidateTag when rules fail.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, e := range ve {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Field + ": " + e.Message)
	}
	return b.String()
}

// Has reports whether any rule failed for field.
func (ve ValidationErrors) Has(field string) bool {
	return slices.ContainsFunc(ve, func(e ValidationError) bool { return e.Field == field })
}

// Get returns the messages recorded for field.
func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, e := range ve {
		if e.Field == field {
			messages = append(messages, e.Message)
		}
	}
	return messages
}

// Fields returns the failing fields in the order they first failed.
func (ve ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ve))
	for _, e := range ve {
		if !slices.Contains(fields, e.Field) {
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// ExtractValidationErrors returns the ValidationErrors wrapped in err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
