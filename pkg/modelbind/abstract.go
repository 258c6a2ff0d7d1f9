package modelbind

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/metadata"
)

// BinderResolver returns the binder and descriptor for a concrete type.
type BinderResolver func(t reflect.Type) (Binder, *metadata.Model, error)

// AbstractBinder binds interface-typed models. The instance comes from the
// existing value or the factory registered for the interface; its dynamic
// type decides which binder fills it.
type AbstractBinder struct {
	model   *metadata.Model
	resolve BinderResolver
}

// NewAbstractBinder returns a binder for the abstract model m.
func NewAbstractBinder(m *metadata.Model, resolve BinderResolver) *AbstractBinder {
	return &AbstractBinder{model: m, resolve: resolve}
}

// Bind implements Binder.
func (b *AbstractBinder) Bind(ctx context.Context, bc Context) (Result, error) {
	state := bc.newState()

	dynamic := reflect.Value{}
	if ex := bc.Model; ex.IsValid() && ex.Kind() == reflect.Interface && !ex.IsNil() {
		dynamic = ex.Elem()
	}

	if !dynamic.IsValid() {
		if !bc.IsTopLevel && !bc.ValueProvider.ContainsPrefix(bc.ModelName) {
			return noResult(state), nil
		}
		v, err := b.model.New()
		if err != nil {
			if bc.IsTopLevel {
				return failedResult(state), err
			}
			bc.log().DebugContext(ctx, "model construction failed",
				logger.Field(bc.ModelName),
				slog.String("type", b.model.Type.String()),
				logger.Error(err),
			)
			state.TryAddException(bc.ModelName, err)
			return failedResult(state), nil
		}
		dynamic = v
		for dynamic.Kind() == reflect.Ptr && !dynamic.IsNil() && dynamic.Elem().Kind() == reflect.Interface {
			dynamic = dynamic.Elem()
		}
		if dynamic.Kind() == reflect.Interface {
			dynamic = dynamic.Elem()
		}
		if !dynamic.IsValid() {
			return noResult(state), nil
		}
	}

	binder, m, err := b.resolve(dynamic.Type())
	if err != nil {
		return failedResult(state), err
	}

	child := bc
	child.Metadata = m
	child.Model = dynamic
	res, err := binder.Bind(ctx, child)
	state.Merge(res.State)
	if err != nil || !res.IsSet() {
		return Result{Outcome: res.Outcome, State: state}, err
	}

	iface := reflect.New(b.model.Base).Elem()
	iface.Set(res.Value)
	return setResult(toType(iface, b.model.Type), state), nil
}
