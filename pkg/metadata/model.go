package metadata

import (
	"encoding"
	"fmt"
	"mime/multipart"
	"reflect"
	"time"
)

// Kind classifies a type for binding purposes.
type Kind uint8

const (
	// KindSimple is a leaf value converted from a single string.
	KindSimple Kind = iota
	// KindComplex is a struct bound property by property.
	KindComplex
	// KindCollection is a slice or array bound element by element.
	KindCollection
	// KindAbstract is a non-empty interface; it needs a registered factory.
	KindAbstract
	// KindFile is an uploaded file or a list of them.
	KindFile
	// KindUnsupported covers maps, channels and functions.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindComplex:
		return "complex"
	case KindCollection:
		return "collection"
	case KindAbstract:
		return "abstract"
	case KindFile:
		return "file"
	default:
		return "unsupported"
	}
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	timeType            = reflect.TypeOf(time.Time{})
	fileHeaderType      = reflect.TypeOf(multipart.FileHeader{})
	fileHeaderPtrType   = reflect.TypeOf((*multipart.FileHeader)(nil))
)

// Model describes a bindable type.
type Model struct {
	// Type is the declared type, possibly a pointer.
	Type reflect.Type
	// Base is Type with all pointer indirections removed.
	Base reflect.Type
	Kind Kind
	// Properties lists the struct fields in declaration order (complex kinds only).
	Properties []*Property
	// Element describes the element type of a collection.
	Element *Model

	factory Factory
}

// Factory constructs a model instance. It is used for abstract types and
// for types whose construction may fail.
type Factory func() (any, error)

// IsComplex reports whether the model is bound property by property.
// Abstract types count as complex: they are objects that cannot be created
// without help.
func (m *Model) IsComplex() bool {
	return m.Kind == KindComplex || m.Kind == KindAbstract
}

// IsCollection reports whether the model is a slice or array.
func (m *Model) IsCollection() bool {
	return m.Kind == KindCollection
}

// Property returns the property with the given Go field name.
func (m *Model) Property(name string) (*Property, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// PropertyByWireName returns the property whose resolved alias equals name.
func (m *Model) PropertyByWireName(name string) (*Property, bool) {
	for _, p := range m.Properties {
		if p.WireName() == name {
			return p, true
		}
	}
	return nil, false
}

// New constructs a default instance and returns it as a value of m.Type.
// Pointer types are allocated down to the base value.
func (m *Model) New() (reflect.Value, error) {
	base, err := m.newBase()
	if err != nil {
		return reflect.Value{}, err
	}

	v := base
	for range pointerDepth(m.Type) {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return v, nil
}

func (m *Model) newBase() (reflect.Value, error) {
	if m.factory != nil {
		obj, err := m.factory()
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %s: %w", ErrModelConstruction, m.Type, err)
		}
		if obj == nil {
			return reflect.Value{}, fmt.Errorf("%w: %s: factory returned nil", ErrModelConstruction, m.Type)
		}
		v := reflect.ValueOf(obj)
		if m.Kind == KindAbstract {
			iv := reflect.New(m.Base).Elem()
			if !v.Type().AssignableTo(m.Base) {
				return reflect.Value{}, fmt.Errorf("%w: %s does not implement %s", ErrModelConstruction, v.Type(), m.Base)
			}
			iv.Set(v)
			return iv, nil
		}
		if v.Type() == reflect.PointerTo(m.Base) {
			return v.Elem(), nil
		}
		if v.Type() != m.Base {
			return reflect.Value{}, fmt.Errorf("%w: factory for %s returned %s", ErrModelConstruction, m.Base, v.Type())
		}
		// Copy into an addressable value so properties can be assigned.
		addr := reflect.New(m.Base).Elem()
		addr.Set(v)
		return addr, nil
	}

	switch m.Kind {
	case KindAbstract, KindUnsupported:
		return reflect.Value{}, fmt.Errorf("%w: %s is abstract or has no default constructor", ErrModelConstruction, m.Type)
	}
	return reflect.New(m.Base).Elem(), nil
}

// Indirect walks pointers down to the base value, allocating nil pointers
// when the value is settable. Interfaces are unwrapped to their dynamic value.
func Indirect(v reflect.Value) reflect.Value {
	for {
		switch v.Kind() {
		case reflect.Ptr:
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		case reflect.Interface:
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		default:
			return v
		}
	}
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func pointerDepth(t reflect.Type) int {
	n := 0
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
		n++
	}
	return n
}

func classify(t reflect.Type) Kind {
	base := baseType(t)

	switch {
	case base == timeType:
		return KindSimple
	case base == fileHeaderType:
		return KindFile
	case reflect.PointerTo(base).Implements(textUnmarshalerType):
		return KindSimple
	}

	switch base.Kind() {
	case reflect.Struct:
		return KindComplex
	case reflect.Interface:
		if base.NumMethod() > 0 {
			return KindAbstract
		}
		return KindSimple
	case reflect.Slice:
		switch elem := base.Elem(); {
		case elem.Kind() == reflect.Uint8:
			return KindSimple
		case elem == fileHeaderPtrType || elem == fileHeaderType:
			return KindFile
		}
		return KindCollection
	case reflect.Array:
		return KindCollection
	case reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return KindUnsupported
	default:
		return KindSimple
	}
}
