package modelbind

import (
	"log/slog"
	"reflect"
	"slices"

	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
	"github.com/dmitrymomot/formbind/pkg/valueprovider"
)

// Context describes one model being bound. It is a value: binders derive
// child contexts with Nested and never modify the one they received.
type Context struct {
	// ModelName is the composite name values and errors are keyed by.
	ModelName string
	// FieldName is the wire name of the property, used in messages.
	FieldName string
	Metadata  *metadata.Model
	// Property is the property being bound; nil for top-level models and collection elements.
	Property *metadata.Property
	// Model is an existing instance to bind into. It may be invalid.
	Model         reflect.Value
	ValueProvider valueprovider.ValueProvider
	IsTopLevel    bool
	// IsRequired marks the model itself as binding-required.
	IsRequired     bool
	PropertyFilter PropertyFilter
	Messages       *Messages
	Logger         *slog.Logger
	MaxErrors      int
}

// Nested returns the context for a property of the current model.
// Property filters apply to the level they were set on only.
func (c Context) Nested(prop *metadata.Property, fieldName, modelName string, existing reflect.Value) Context {
	child := c
	child.ModelName = modelName
	child.FieldName = fieldName
	child.Property = prop
	child.Model = existing
	child.IsTopLevel = false
	child.PropertyFilter = nil
	child.IsRequired = false
	if prop != nil {
		child.Metadata = prop.Model
		child.IsRequired = prop.IsBindingRequired()
	}
	return child
}

// Element returns the context for the collection element at modelName.
func (c Context) Element(elem *metadata.Model, modelName string) Context {
	child := c.Nested(nil, c.FieldName, modelName, reflect.Value{})
	child.Metadata = elem
	return child
}

func (c Context) newState() *modelstate.Dictionary {
	return modelstate.New(modelstate.WithMaxErrors(c.MaxErrors))
}

func (c Context) messages() *Messages {
	if c.Messages == nil {
		return defaultMessages
	}
	return c.Messages
}

func (c Context) log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// displayName is the name used in messages: the wire name, or the model
// name for top-level and element contexts.
func (c Context) displayName() string {
	if c.FieldName != "" {
		return c.FieldName
	}
	if c.ModelName != "" {
		return c.ModelName
	}
	if c.Metadata != nil {
		return c.Metadata.Base.Name()
	}
	return ""
}

// PropertyFilter decides whether a property takes part in binding.
type PropertyFilter func(*metadata.Property) bool

// Include allows only the properties with the given wire names.
func Include(names ...string) PropertyFilter {
	return func(p *metadata.Property) bool {
		return slices.Contains(names, p.WireName())
	}
}

// Exclude skips the properties with the given wire names.
func Exclude(names ...string) PropertyFilter {
	return func(p *metadata.Property) bool {
		return !slices.Contains(names, p.WireName())
	}
}
