package metadata

import "errors"

var (
	// ErrNilType is returned when a descriptor is requested for a nil type.
	ErrNilType = errors.New("metadata: nil type")

	// ErrModelConstruction is returned when a model instance cannot be created,
	// e.g. for interface types without a registered factory.
	ErrModelConstruction = errors.New("metadata: cannot create model instance")

	// ErrTypeMismatch is returned when a value cannot be assigned to a property.
	ErrTypeMismatch = errors.New("metadata: value type does not match property type")

	// ErrReadOnly is returned when assigning to a read-only property.
	ErrReadOnly = errors.New("metadata: property is read-only")

	// ErrInvalidOverrides is returned when alias overrides cannot be parsed.
	ErrInvalidOverrides = errors.New("metadata: invalid alias overrides")
)
