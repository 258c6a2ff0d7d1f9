package modelbind

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/modelname"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
)

// PropertyBinder pairs a property with the binder resolved for it.
type PropertyBinder struct {
	Property *metadata.Property
	Binder   Binder
}

// CompositeBinder binds a struct property by property. Request values are
// looked up under each property's wire name: a field TextBox tagged
// json:"foo" binds from "foo" and never from "TextBox".
type CompositeBinder struct {
	model      *metadata.Model
	properties []PropertyBinder
	aggregator *Aggregator

	greedyOnce sync.Once
	greedy     bool
}

// NewCompositeBinder returns a binder for the complex model m. properties
// must follow the declaration order of m.Properties.
func NewCompositeBinder(m *metadata.Model, properties []PropertyBinder, aggregator *Aggregator) *CompositeBinder {
	if aggregator == nil {
		aggregator = NewAggregator()
	}
	return &CompositeBinder{model: m, properties: properties, aggregator: aggregator}
}

// Bind implements Binder.
func (b *CompositeBinder) Bind(ctx context.Context, bc Context) (Result, error) {
	state := bc.newState()

	if !b.canCreateModel(bc) {
		return noResult(state), nil
	}

	instance, err := b.instance(bc)
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

	bound := false
	for _, pb := range b.properties {
		if err := ctx.Err(); err != nil {
			return failedResult(state), err
		}

		p := pb.Property
		if !bindable(bc, p) {
			continue
		}

		name := modelname.Property(bc.ModelName, p.WireName())
		var existing reflect.Value
		if p.Model.IsComplex() {
			existing = p.Get(instance)
		}

		res, err := pb.Binder.Bind(ctx, bc.Nested(p, p.WireName(), name, existing))
		state.Merge(res.State)
		if err != nil {
			return failedResult(state), err
		}

		switch {
		case res.IsSet():
			bound = true
			if p.ReadOnly {
				// Bound in place through the existing instance.
				continue
			}
			if err := p.Set(instance, res.Value); err != nil {
				bc.log().DebugContext(ctx, "property setter failed",
					logger.Field(name),
					logger.Error(err),
				)
				addSetterError(bc, state, name, p.WireName(), err)
			}
		case p.IsBindingRequired():
			addFieldError(state, name, bc.messages().MissingBindRequiredValue(p.WireName()))
		}
	}

	if !bound && bc.IsTopLevel && bc.IsRequired {
		addFieldError(state, bc.ModelName, bc.messages().MissingBindRequiredValue(bc.displayName()))
	}

	b.aggregator.Validate(ctx, bc, b.model, instance, state)

	return setResult(instance, state), nil
}

// canCreateModel reports whether the request holds anything for this model.
// Nested models are only allocated when a child value is present or a
// descendant consumes the whole body.
func (b *CompositeBinder) canCreateModel(bc Context) bool {
	if bc.IsTopLevel || b.hasGreedy() {
		return true
	}
	for _, pb := range b.properties {
		if !bindable(bc, pb.Property) {
			continue
		}
		if bc.ValueProvider.ContainsPrefix(modelname.Property(bc.ModelName, pb.Property.WireName())) {
			return true
		}
	}
	return false
}

func (b *CompositeBinder) hasGreedy() bool {
	b.greedyOnce.Do(func() {
		b.greedy = hasGreedyDescendant(b.model, make(map[*metadata.Model]bool))
	})
	return b.greedy
}

func hasGreedyDescendant(m *metadata.Model, seen map[*metadata.Model]bool) bool {
	if seen[m] {
		return false
	}
	seen[m] = true
	for _, p := range m.Properties {
		if !p.IsBindingAllowed() {
			continue
		}
		if p.Source.IsGreedy() {
			return true
		}
		if p.Model.Kind == metadata.KindComplex && hasGreedyDescendant(p.Model, seen) {
			return true
		}
	}
	return false
}

// instance returns the value properties are written to: the existing model
// when one is present, a freshly constructed one otherwise.
func (b *CompositeBinder) instance(bc Context) (reflect.Value, error) {
	if ex := bc.Model; ex.IsValid() {
		switch {
		case ex.Kind() == reflect.Ptr && !ex.IsNil():
			return ex, nil
		case ex.Kind() != reflect.Ptr && ex.Kind() != reflect.Interface && ex.CanAddr():
			return ex, nil
		case ex.Kind() != reflect.Ptr && ex.Kind() != reflect.Interface:
			cp := reflect.New(ex.Type()).Elem()
			cp.Set(ex)
			return cp, nil
		}
	}
	return b.model.New()
}

func bindable(bc Context, p *metadata.Property) bool {
	if bc.PropertyFilter != nil && !bc.PropertyFilter(p) {
		return false
	}
	return p.IsBindingAllowed() && p.CanUpdate()
}

// addFieldError records message against key unless key already holds an
// error. The first finding for a field wins.
func addFieldError(state *modelstate.Dictionary, key, message string) bool {
	if state.FieldValidationState(key) == modelstate.Invalid {
		return false
	}
	return state.TryAddError(key, message)
}

func addSetterError(bc Context, state *modelstate.Dictionary, key, field string, err error) {
	if state.FieldValidationState(key) == modelstate.Invalid {
		return
	}
	if errors.Is(err, metadata.ErrTypeMismatch) {
		attempted := ""
		if e, ok := state.Entry(key); ok {
			attempted = e.AttemptedValue
		}
		state.TryAddError(key, bc.messages().AttemptedValueIsInvalid(attempted, field))
		return
	}
	state.TryAddException(key, err)
}
