package modelbind

import (
	"context"
	"log/slog"
	"reflect"
	"strings"

	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/metadata"
)

// SimpleBinder converts the first submitted value to a simple type.
//
// Empty values bind nil for pointer types and are treated as absent for
// everything else, so an empty `<input type="number">` leaves the field at
// its zero value rather than failing conversion.
type SimpleBinder struct {
	model *metadata.Model
}

// NewSimpleBinder returns a binder for the simple model m.
func NewSimpleBinder(m *metadata.Model) *SimpleBinder {
	return &SimpleBinder{model: m}
}

// Bind implements Binder.
func (b *SimpleBinder) Bind(ctx context.Context, bc Context) (Result, error) {
	state := bc.newState()

	found := bc.ValueProvider.GetValue(bc.ModelName)
	if found.IsEmpty() {
		return noResult(state), nil
	}

	value := found.First()
	state.SetValue(bc.ModelName, found.Values, value)

	t := b.model.Type
	if strings.TrimSpace(value) == "" && baseKind(t) != reflect.String {
		if t.Kind() == reflect.Ptr {
			return setResult(reflect.Zero(t), state), nil
		}
		return noResult(state), nil
	}

	v, err := convert(value, t)
	if err != nil {
		bc.log().DebugContext(ctx, "value conversion failed",
			logger.Field(bc.ModelName),
			slog.String("type", t.String()),
			logger.Error(err),
		)
		state.TryAddError(bc.ModelName, bc.messages().AttemptedValueIsInvalid(value, bc.displayName()))
		return failedResult(state), nil
	}

	return setResult(v, state), nil
}
