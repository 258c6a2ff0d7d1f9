package modelbind

import (
	"context"
	"reflect"
	"strings"

	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/modelname"
)

// DefaultMaxCollectionIndex bounds indexed collection binding (`items[0]`...).
const DefaultMaxCollectionIndex = 1000

// CollectionBinder binds slices and arrays.
//
// Simple elements may be submitted as repeated values (`baz=1&baz=2`).
// Otherwise elements are read by zero-based contiguous index
// (`items[0].name`, `items[1].name`) until an index has no values.
type CollectionBinder struct {
	model    *metadata.Model
	element  Binder
	maxIndex int
}

// NewCollectionBinder returns a binder for the collection model m delegating
// elements to element.
func NewCollectionBinder(m *metadata.Model, element Binder, maxIndex int) *CollectionBinder {
	if maxIndex <= 0 {
		maxIndex = DefaultMaxCollectionIndex
	}
	return &CollectionBinder{model: m, element: element, maxIndex: maxIndex}
}

// Bind implements Binder.
func (b *CollectionBinder) Bind(ctx context.Context, bc Context) (Result, error) {
	state := bc.newState()
	elemType := b.model.Base.Elem()

	var (
		items []reflect.Value
		found bool
	)

	if b.model.Element.Kind == metadata.KindSimple {
		if raw := bc.ValueProvider.GetValue(bc.ModelName); !raw.IsEmpty() {
			found = true
			state.SetValue(bc.ModelName, raw.Values, strings.Join(raw.Values, ","))
			for _, s := range raw.Values {
				if strings.TrimSpace(s) == "" && baseKind(elemType) != reflect.String {
					continue
				}
				v, err := convert(s, elemType)
				if err != nil {
					state.TryAddError(bc.ModelName, bc.messages().AttemptedValueIsInvalid(s, bc.displayName()))
					return failedResult(state), nil
				}
				items = append(items, v)
			}
		}
	}

	if !found {
		for i := range b.maxIndex {
			name := modelname.Index(bc.ModelName, i)
			if !bc.ValueProvider.ContainsPrefix(name) {
				break
			}
			if err := ctx.Err(); err != nil {
				return failedResult(state), err
			}
			found = true

			res, err := b.element.Bind(ctx, bc.Element(b.model.Element, name))
			state.Merge(res.State)
			if err != nil {
				return failedResult(state), err
			}
			if res.IsSet() && res.Value.IsValid() {
				items = append(items, toType(res.Value, elemType))
			} else {
				items = append(items, reflect.Zero(elemType))
			}
		}
	}

	if !found {
		return noResult(state), nil
	}

	var v reflect.Value
	if b.model.Base.Kind() == reflect.Array {
		v = reflect.New(b.model.Base).Elem()
		for i := 0; i < len(items) && i < v.Len(); i++ {
			v.Index(i).Set(items[i])
		}
	} else {
		v = reflect.MakeSlice(b.model.Base, len(items), len(items))
		for i, item := range items {
			v.Index(i).Set(item)
		}
	}

	return setResult(toType(v, b.model.Type), state), nil
}
