package modelbind

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	uuidType            = reflect.TypeOf(uuid.UUID{})
)

// timeLayouts are tried in order; they cover RFC 3339 and the values sent
// by HTML date and datetime-local inputs.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// convert parses value into a new value of type t.
func convert(value string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Ptr {
		elem, err := convert(value, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(elem)
		return p, nil
	}

	switch t {
	case timeType:
		for _, layout := range timeLayouts {
			if tm, err := time.Parse(layout, value); err == nil {
				return reflect.ValueOf(tm), nil
			}
		}
		return reflect.Value{}, fmt.Errorf("invalid time value %q", value)
	case durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid duration value %q", value)
		}
		return reflect.ValueOf(d).Convert(t), nil
	case uuidType:
		id, err := uuid.Parse(value)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid uuid value %q", value)
		}
		return reflect.ValueOf(id), nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value)); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid int value %q", value)
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid uint value %q", value)
		}
		v.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid float value %q", value)
		}
		v.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			// Checkboxes submit "on"; be lenient with common spellings.
			switch strings.ToLower(strings.TrimSpace(value)) {
			case "on", "yes":
				b = true
			case "off", "no":
				b = false
			default:
				return reflect.Value{}, fmt.Errorf("invalid bool value %q", value)
			}
		}
		v.SetBool(b)

	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		v.SetBytes([]byte(value))

	case reflect.Interface:
		if t.NumMethod() != 0 {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		v.Set(reflect.ValueOf(value))

	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	return v, nil
}

func baseKind(t reflect.Type) reflect.Kind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind()
}

// toType adds the pointer indirections t has over v's type.
func toType(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t || t.Kind() != reflect.Ptr {
		return v
	}
	inner := toType(v, t.Elem())
	p := reflect.New(t.Elem())
	p.Elem().Set(inner)
	return p
}
