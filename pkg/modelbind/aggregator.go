package modelbind

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"

	exprvalidator "github.com/bytedance/go-tagexpr/v2/validator"

	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/modelname"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
	"github.com/dmitrymomot/formbind/pkg/validator"
)

// DefaultExprTag is the struct tag holding go-tagexpr validation expressions.
const DefaultExprTag = "vd"

// Validatable is implemented by models with cross-field invariants.
//
// Validate may return validator.ValidationErrors or a
// modelstate.ValidationError to target individual fields (by Go field name
// or wire name); any other error is recorded against the model itself.
type Validatable interface {
	Validate() error
}

// ObjectValidator validates a bound model. model is a pointer to the instance.
type ObjectValidator func(ctx context.Context, model any) error

// Aggregator runs the validators of a bound model. Property validators
// (`validate` rules and `vd` expressions) always run; object validators run
// only when the model holds no errors at all.
type Aggregator struct {
	validators []ObjectValidator
	exprTag    string
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithObjectValidators appends object-level validators.
func WithObjectValidators(v ...ObjectValidator) AggregatorOption {
	return func(a *Aggregator) {
		a.validators = append(a.validators, v...)
	}
}

// WithExprTag changes the tag expressions are read from.
func WithExprTag(tag string) AggregatorOption {
	return func(a *Aggregator) {
		if tag != "" {
			a.exprTag = tag
		}
	}
}

// NewAggregator returns an Aggregator configured with opts.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{exprTag: DefaultExprTag}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Validate validates instance, a value of model m, recording findings in
// state under bc.ModelName. A field keeps only its first finding.
func (a *Aggregator) Validate(ctx context.Context, bc Context, m *metadata.Model, instance reflect.Value, state *modelstate.Dictionary) {
	findings := a.validateRules(ctx, bc, m, instance, state)
	findings += a.validateExpressions(ctx, bc, m, instance, state)

	if findings == 0 && state.IsValid() {
		a.validateObject(ctx, bc, m, instance, state)
	}

	for _, p := range m.Properties {
		key := modelname.Property(bc.ModelName, p.WireName())
		if _, ok := state.Entry(key); ok && state.FieldValidationState(key) != modelstate.Invalid {
			state.MarkValid(key)
		}
	}
}

func (a *Aggregator) validateRules(ctx context.Context, bc Context, m *metadata.Model, instance reflect.Value, state *modelstate.Dictionary) int {
	findings := 0
	for _, p := range m.Properties {
		if p.Rules == "" || !bindable(bc, p) {
			continue
		}
		v := p.Get(instance)
		if !v.IsValid() {
			continue
		}

		key := modelname.Property(bc.ModelName, p.WireName())
		err := validator.ValidateTag(p.WireName(), v.Interface(), p.Rules)
		if err == nil {
			continue
		}

		verrs := validator.ExtractValidationErrors(err)
		if verrs == nil {
			bc.log().WarnContext(ctx, "invalid validation rules", logger.Field(key), logger.Error(err))
			findings++
			if state.FieldValidationState(key) != modelstate.Invalid {
				state.TryAddException(key, err)
			}
			continue
		}
		for _, e := range verrs {
			findings++
			addFieldError(state, key, bc.messages().Validation(e))
		}
	}
	return findings
}

func (a *Aggregator) validateExpressions(ctx context.Context, bc Context, m *metadata.Model, instance reflect.Value, state *modelstate.Dictionary) int {
	if !slices.ContainsFunc(m.Properties, func(p *metadata.Property) bool { return p.HasExpr }) {
		return 0
	}
	target, ok := addressOf(instance)
	if !ok {
		return 0
	}

	type failure struct{ path, msg string }
	var failures []failure
	vd := exprvalidator.New(a.exprTag).SetErrorFactory(func(failPath, msg string) error {
		failures = append(failures, failure{path: failPath, msg: msg})
		return errors.New(failPath)
	})
	err := vd.Validate(target, true)
	if err != nil && len(failures) == 0 {
		bc.log().WarnContext(ctx, "expression validation failed", logger.Field(bc.ModelName), logger.Error(err))
		addFieldError(state, bc.ModelName, bc.messages().ExpressionFailed(bc.displayName()))
		return 1
	}

	findings := 0
	for _, f := range failures {
		// Nested models validate their own expressions.
		if strings.ContainsAny(f.path, ".[") {
			continue
		}
		p, ok := m.Property(f.path)
		if !ok || !bindable(bc, p) {
			continue
		}
		findings++
		msg := f.msg
		if msg == "" {
			msg = bc.messages().ExpressionFailed(p.WireName())
		}
		addFieldError(state, modelname.Property(bc.ModelName, p.WireName()), msg)
	}
	return findings
}

func (a *Aggregator) validateObject(ctx context.Context, bc Context, m *metadata.Model, instance reflect.Value, state *modelstate.Dictionary) {
	target, ok := addressOf(instance)
	if !ok {
		return
	}
	if v, ok := target.(Validatable); ok {
		a.report(bc, m, state, v.Validate())
	}
	for _, fn := range a.validators {
		a.report(bc, m, state, fn(ctx, target))
	}
}

func (a *Aggregator) report(bc Context, m *metadata.Model, state *modelstate.Dictionary, err error) {
	if err == nil {
		return
	}

	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		for _, e := range verrs {
			addFieldError(state, memberKey(bc, m, e.Field), bc.messages().Validation(e))
		}
		return
	}

	var ve modelstate.ValidationError
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for field := range ve {
			fields = append(fields, field)
		}
		slices.Sort(fields)
		for _, field := range fields {
			for _, msg := range ve[field] {
				addFieldError(state, memberKey(bc, m, field), msg)
			}
		}
		return
	}

	if state.FieldValidationState(bc.ModelName) != modelstate.Invalid {
		state.TryAddException(bc.ModelName, err)
	}
}

// memberKey maps a member name reported by a validator to a state key. Go
// field names are translated to wire names.
func memberKey(bc Context, m *metadata.Model, member string) string {
	if p, ok := m.Property(member); ok {
		member = p.WireName()
	}
	return modelname.Join(bc.ModelName, member)
}

func addressOf(v reflect.Value) (any, bool) {
	switch {
	case !v.IsValid():
		return nil, false
	case v.Kind() == reflect.Ptr:
		return v.Interface(), !v.IsNil()
	case v.CanAddr():
		return v.Addr().Interface(), true
	default:
		return v.Interface(), true
	}
}
