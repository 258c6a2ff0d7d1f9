package modelbind

import "errors"

var (
	// ErrInvalidTarget is returned when the bind target is not a non-nil pointer.
	ErrInvalidTarget = errors.New("bind target must be a non-nil pointer")

	// ErrNoBinder is returned when no provider offers a binder for a type.
	ErrNoBinder = errors.New("no binder for type")

	// ErrInvalidBody is recorded when a greedy body binder cannot decode the request body.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrUnsupportedType is recorded when a value cannot be converted to the target type.
	ErrUnsupportedType = errors.New("unsupported type")
)
