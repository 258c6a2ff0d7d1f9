package validator

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	phoneRegex        = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	alphanumericRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaRegex        = regexp.MustCompile(`^[a-zA-Z]+$`)
	numericRegex      = regexp.MustCompile(`^[0-9]+$`)

	uuidType = reflect.TypeOf(uuid.UUID{})
)

func failure(field, key, message string, values map[string]any) ValidationError {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return ValidationError{
		Field:             field,
		Message:           message,
		TranslationKey:    key,
		TranslationValues: values,
	}
}

// Rule pairs a check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs rules in order and returns every failure as ValidationErrors.
func Apply(rules ...Rule) error {
	var failures ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			failures = append(failures, rule.Error)
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return failures
}

// Required fails for nil values, zero values and empty collections.
// Strings consisting only of whitespace count as empty.
func Required(field string, value reflect.Value) Rule {
	return Rule{
		Check: func() bool {
			v, ok := deref(value)
			if !ok {
				return false
			}
			switch v.Kind() {
			case reflect.String:
				return strings.TrimSpace(v.String()) != ""
			case reflect.Slice, reflect.Map, reflect.Array:
				if v.Type() == uuidType {
					return v.Interface().(uuid.UUID) != uuid.Nil
				}
				return v.Len() > 0
			default:
				return !v.IsZero()
			}
		},
		Error: failure(field, "validation.required", "field is required", nil),
	}
}

// Min checks a lower bound: length for strings and collections, value for numbers.
func Min(field string, value reflect.Value, param string) (Rule, error) {
	return bound(field, value, param, true)
}

// Max checks an upper bound: length for strings and collections, value for numbers.
func Max(field string, value reflect.Value, param string) (Rule, error) {
	return bound(field, value, param, false)
}

func bound(field string, value reflect.Value, param string, lower bool) (Rule, error) {
	v, _ := deref(value)
	name := "max"
	if lower {
		name = "min"
	}

	if isLengthKind(v.Kind()) && v.Type() != uuidType {
		n, err := strconv.Atoi(param)
		if err != nil || n < 0 {
			return Rule{}, fmt.Errorf("%w: %s=%q", ErrInvalidRuleParam, name, param)
		}
		key, message := lengthMessage(v.Kind(), name, n)
		return Rule{
			Check: func() bool {
				l := length(v)
				if lower {
					return l >= n
				}
				return l <= n
			},
			Error: failure(field, key, message, map[string]any{name: n}),
		}, nil
	}

	limit, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %s=%q", ErrInvalidRuleParam, name, param)
	}
	x, ok := number(v)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %s on %s", ErrRuleNotApplicable, name, value.Type())
	}
	message := fmt.Sprintf("must be at most %v", limit)
	if lower {
		message = fmt.Sprintf("must be at least %v", limit)
	}
	return Rule{
		Check: func() bool {
			if lower {
				return x >= limit
			}
			return x <= limit
		},
		Error: failure(field, "validation."+name, message, map[string]any{name: limit}),
	}, nil
}

// Len checks an exact length of a string or collection.
func Len(field string, value reflect.Value, param string) (Rule, error) {
	v, _ := deref(value)
	if !isLengthKind(v.Kind()) {
		return Rule{}, fmt.Errorf("%w: len on %s", ErrRuleNotApplicable, value.Type())
	}
	n, err := strconv.Atoi(param)
	if err != nil || n < 0 {
		return Rule{}, fmt.Errorf("%w: len=%q", ErrInvalidRuleParam, param)
	}

	key, message := "validation.exact_length", fmt.Sprintf("must be exactly %d characters long", n)
	values := map[string]any{"length": n}
	if v.Kind() != reflect.String {
		key, message = "validation.exact_items", fmt.Sprintf("must have exactly %d items", n)
		values = map[string]any{"length": n}
	}
	return Rule{
		Check: func() bool { return length(v) == n },
		Error: failure(field, key, message, values),
	}, nil
}

// OneOf checks membership in a space separated list of allowed values.
func OneOf(field string, value reflect.Value, param string) (Rule, error) {
	allowed := strings.Fields(param)
	if len(allowed) == 0 {
		return Rule{}, fmt.Errorf("%w: oneof requires values", ErrInvalidRuleParam)
	}
	s, err := text(value, "oneof")
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Check: func() bool { return slices.Contains(allowed, s) },
		Error: failure(field, "validation.in_list",
			fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
			map[string]any{"allowed_values": allowed}),
	}, nil
}

// Email checks an RFC 5322 address with a dotted domain.
func Email(field string, value reflect.Value) (Rule, error) {
	s, err := text(value, "email")
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(s)
			if err != nil || addr.Address != strings.TrimSpace(s) {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" || !strings.Contains(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: failure(field, "validation.email", "must be a valid email address", nil),
	}, nil
}

// URL checks an absolute URL. A non-empty param restricts the scheme to the
// space separated list it contains.
func URL(field string, value reflect.Value, param string) (Rule, error) {
	s, err := text(value, "url")
	if err != nil {
		return Rule{}, err
	}
	schemes := strings.Fields(param)
	key, message := "validation.url", "must be a valid URL"
	values := map[string]any{}
	if len(schemes) > 0 {
		key = "validation.url_scheme"
		message = fmt.Sprintf("must be a valid URL with scheme: %s", strings.Join(schemes, ", "))
		values["schemes"] = schemes
	}
	return Rule{
		Check: func() bool {
			u, err := url.ParseRequestURI(strings.TrimSpace(s))
			if err != nil || u.Scheme == "" || u.Host == "" {
				return false
			}
			return len(schemes) == 0 || slices.Contains(schemes, u.Scheme)
		},
		Error: failure(field, key, message, values),
	}, nil
}

// UUID checks a canonical UUID string. uuid.UUID values must not be nil.
func UUID(field string, value reflect.Value) (Rule, error) {
	v, _ := deref(value)
	if v.IsValid() && v.Type() == uuidType {
		id := v.Interface().(uuid.UUID)
		return Rule{
			Check: func() bool { return id != uuid.Nil },
			Error: failure(field, "validation.uuid_not_nil", "must not be a nil UUID", nil),
		}, nil
	}
	s, err := text(value, "uuid")
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Check: func() bool {
			if len(s) != 36 {
				return false
			}
			_, err := uuid.Parse(s)
			return err == nil
		},
		Error: failure(field, "validation.uuid", "must be a valid UUID", nil),
	}, nil
}

// IP checks an IPv4 or IPv6 address.
func IP(field string, value reflect.Value) (Rule, error) {
	s, err := text(value, "ip")
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Check: func() bool { return net.ParseIP(s) != nil },
		Error: failure(field, "validation.ip", "must be a valid IP address", nil),
	}, nil
}

// Pattern checks a string against one of the built-in formats: phone,
// alpha, alphanum and numeric.
func Pattern(field string, value reflect.Value, name string) (Rule, error) {
	s, err := text(value, name)
	if err != nil {
		return Rule{}, err
	}

	var (
		re      *regexp.Regexp
		key     string
		message string
	)
	switch name {
	case "phone":
		s = strings.NewReplacer(" ", "", "-", "").Replace(s)
		re, key, message = phoneRegex, "validation.phone", "must be a valid phone number in international format"
	case "alpha":
		re, key, message = alphaRegex, "validation.alpha", "must contain only letters"
	case "alphanum":
		re, key, message = alphanumericRegex, "validation.alphanumeric", "must contain only letters and numbers"
	case "numeric":
		re, key, message = numericRegex, "validation.numeric_string", "must contain only digits"
	default:
		return Rule{}, fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}

	return Rule{
		Check: func() bool { return re.MatchString(s) },
		Error: failure(field, key, message, nil),
	}, nil
}

func deref(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func isLengthKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func length(v reflect.Value) int {
	if v.Kind() == reflect.String {
		return len([]rune(v.String()))
	}
	return v.Len()
}

func lengthMessage(k reflect.Kind, name string, n int) (key, message string) {
	bound := "least"
	if name == "max" {
		bound = "most"
	}
	if k == reflect.String {
		return "validation." + name + "_length", fmt.Sprintf("must be at %s %d characters long", bound, n)
	}
	return "validation." + name + "_items", fmt.Sprintf("must have at %s %d items", bound, n)
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

// text returns the string form of v for format rules. Integers are
// accepted so `oneof` works on numeric selects.
func text(value reflect.Value, rule string) (string, error) {
	v, _ := deref(value)
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rule == "oneof" {
			return strconv.FormatInt(v.Int(), 10), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rule == "oneof" {
			return strconv.FormatUint(v.Uint(), 10), nil
		}
	}
	if !value.IsValid() {
		return "", fmt.Errorf("%w: %s on invalid value", ErrRuleNotApplicable, rule)
	}
	return "", fmt.Errorf("%w: %s on %s", ErrRuleNotApplicable, rule, value.Type())
}
