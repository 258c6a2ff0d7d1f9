package metadata

import (
	"fmt"
	"reflect"
)

// BindingBehavior controls whether a property takes part in binding.
type BindingBehavior uint8

const (
	BindingOptional BindingBehavior = iota
	BindingRequired
	BindingNever
)

// Source identifies where a property reads its value from.
type Source uint8

const (
	// SourceValue reads named values from the value provider.
	SourceValue Source = iota
	// SourceBody consumes the entire request body.
	SourceBody
	// SourceFile reads uploaded files.
	SourceFile
)

// IsGreedy reports whether the source consumes the whole request rather than a named field.
func (s Source) IsGreedy() bool {
	return s == SourceBody
}

// PropertySetter lets a model intercept property writes, e.g. to enforce
// domain rules. A returned error is reported against the property's field.
type PropertySetter interface {
	SetProperty(name string, value any) error
}

var propertySetterType = reflect.TypeOf((*PropertySetter)(nil)).Elem()

// Property describes a single bindable struct field.
type Property struct {
	// Name is the declared Go field name.
	Name string
	// Alias is the wire name from the serialization tag, empty when absent.
	Alias string
	// Index is the field index sequence for reflect.Value.FieldByIndex.
	Index []int
	// Type is the declared field type.
	Type     reflect.Type
	Binding  BindingBehavior
	ReadOnly bool
	Source   Source
	// Rules holds the raw `validate` tag.
	Rules string
	// HasExpr reports whether the field declares a `vd` expression.
	HasExpr bool
	// Model describes the field type.
	Model *Model
}

// ResolveAlias returns the wire-level field name for p: its alias when one is
// declared, its Go field name otherwise.
func ResolveAlias(p *Property) string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// WireName is shorthand for ResolveAlias(p).
func (p *Property) WireName() string {
	return ResolveAlias(p)
}

// IsBindingAllowed reports whether the property may be bound at all.
func (p *Property) IsBindingAllowed() bool {
	return p.Binding != BindingNever
}

// IsBindingRequired reports whether a missing value is an error.
func (p *Property) IsBindingRequired() bool {
	return p.Binding == BindingRequired
}

// CanUpdate reports whether binding may touch the property. Read-only
// properties are only updated in place, which is possible for nested objects
// but never for values, arrays or strings.
func (p *Property) CanUpdate() bool {
	return !p.ReadOnly || canUpdateReadOnly(p.Type)
}

func canUpdateReadOnly(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface:
		k := classify(t)
		return k == KindComplex || k == KindAbstract
	default:
		// Value types, slices, arrays and strings are replaced, never mutated.
		return false
	}
}

// Get returns the field value of container, or an invalid Value when an
// embedded pointer on the path is nil.
func (p *Property) Get(container reflect.Value) reflect.Value {
	container = Indirect(container)
	if !container.IsValid() {
		return reflect.Value{}
	}
	f, err := container.FieldByIndexErr(p.Index)
	if err != nil {
		return reflect.Value{}
	}
	return f
}

// Set assigns value to the property of container. Models implementing
// PropertySetter receive the write instead. Set never panics: reflection
// failures are returned as errors.
func (p *Property) Set(container, value reflect.Value) (err error) {
	if p.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, p.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrTypeMismatch, p.Name, r)
		}
	}()

	if setter, ok := asPropertySetter(container); ok {
		var v any
		if value.IsValid() {
			v = value.Interface()
		}
		return setter.SetProperty(p.Name, v)
	}

	container = Indirect(container)
	if !container.IsValid() || !container.CanAddr() {
		return fmt.Errorf("%w: %s: container is not addressable", ErrTypeMismatch, p.Name)
	}

	field := container
	for i, idx := range p.Index {
		if i > 0 {
			field = Indirect(field)
			if !field.IsValid() {
				return fmt.Errorf("%w: %s: nil embedded struct", ErrTypeMismatch, p.Name)
			}
		}
		field = field.Field(idx)
	}

	if !value.IsValid() {
		field.SetZero()
		return nil
	}
	if !value.Type().AssignableTo(field.Type()) {
		if value.Type().ConvertibleTo(field.Type()) {
			value = value.Convert(field.Type())
		} else {
			return fmt.Errorf("%w: %s: cannot assign %s to %s", ErrTypeMismatch, p.Name, value.Type(), field.Type())
		}
	}
	field.Set(value)
	return nil
}

func asPropertySetter(container reflect.Value) (PropertySetter, bool) {
	for v := container; v.IsValid(); {
		if v.Type().Implements(propertySetterType) && (v.Kind() != reflect.Ptr || !v.IsNil()) {
			return v.Interface().(PropertySetter), true
		}
		if v.CanAddr() && v.Addr().Type().Implements(propertySetterType) {
			return v.Addr().Interface().(PropertySetter), true
		}
		if v.Kind() != reflect.Ptr && v.Kind() != reflect.Interface {
			break
		}
		if v.IsNil() {
			break
		}
		v = v.Elem()
	}
	return nil, false
}
