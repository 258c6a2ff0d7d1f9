package modelbind

import "context"

// Binder binds one model or property described by a Context.
//
// Binding problems (missing values, conversion and validation failures) are
// data: they are recorded in Result.State and the returned error stays nil.
// The error is reserved for conditions that abort the whole bind, such as a
// cancelled context or a top-level model that cannot be constructed.
type Binder interface {
	Bind(ctx context.Context, bc Context) (Result, error)
}

// BinderFunc adapts a function to the Binder interface.
type BinderFunc func(ctx context.Context, bc Context) (Result, error)

// Bind implements Binder.
func (f BinderFunc) Bind(ctx context.Context, bc Context) (Result, error) {
	return f(ctx, bc)
}
