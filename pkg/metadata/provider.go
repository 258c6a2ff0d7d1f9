package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Option configures a Provider.
type Option func(*Provider)

// WithTagName sets the struct tag aliases are read from.
func WithTagName(name string) Option {
	return func(p *Provider) {
		if name != "" {
			p.tagName = name
		}
	}
}

// WithOverrides applies alias overrides loaded with LoadOverrides.
func WithOverrides(o Overrides) Option {
	return func(p *Provider) {
		for typeName, fields := range o {
			if p.overrides[typeName] == nil {
				p.overrides[typeName] = make(map[string]string, len(fields))
			}
			for field, alias := range fields {
				p.overrides[typeName][field] = alias
			}
		}
	}
}

// WithFactory registers a constructor for t. Abstract (interface) types can
// only be created through a factory.
func WithFactory(t reflect.Type, f Factory) Option {
	return func(p *Provider) {
		if t != nil && f != nil {
			p.factories[t] = f
		}
	}
}

// Provider builds and caches model descriptors. It is safe for concurrent use.
type Provider struct {
	tagName   string
	overrides Overrides
	factories map[reflect.Type]Factory

	cache sync.Map // reflect.Type -> *Model
	group singleflight.Group
}

// NewProvider returns a Provider configured with opts.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		tagName:   DefaultTagName,
		overrides: make(Overrides),
		factories: make(map[reflect.Type]Factory),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultProvider = NewProvider()

// Default returns the process-wide provider using the `json` tag.
func Default() *Provider {
	return defaultProvider
}

// TagName returns the struct tag aliases are read from.
func (p *Provider) TagName() string {
	return p.tagName
}

// ForType returns the descriptor of t, building it on first use.
func (p *Provider) ForType(t reflect.Type) (*Model, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if m, ok := p.cache.Load(t); ok {
		return m.(*Model), nil
	}

	key := fmt.Sprintf("%s@%p", t, t)
	v, err, _ := p.group.Do(key, func() (any, error) {
		if m, ok := p.cache.Load(t); ok {
			return m, nil
		}
		built := make(map[reflect.Type]*Model)
		m := p.build(t, built)
		for bt, bm := range built {
			p.cache.LoadOrStore(bt, bm)
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Model), nil
}

// MustForType is like ForType but panics on error.
func (p *Provider) MustForType(t reflect.Type) *Model {
	m, err := p.ForType(t)
	if err != nil {
		panic(err)
	}
	return m
}

func (p *Provider) build(t reflect.Type, building map[reflect.Type]*Model) *Model {
	if m, ok := p.cache.Load(t); ok {
		return m.(*Model)
	}
	if m, ok := building[t]; ok {
		// Self-referential type: the shell is completed by the outer call.
		return m
	}

	base := baseType(t)
	m := &Model{
		Type:    t,
		Base:    base,
		Kind:    classify(t),
		factory: p.factories[t],
	}
	if m.factory == nil {
		m.factory = p.factories[base]
	}
	building[t] = m

	switch m.Kind {
	case KindCollection:
		m.Element = p.build(base.Elem(), building)
	case KindComplex:
		m.Properties = p.properties(base, nil, building)
	}
	return m
}

// properties walks the struct fields of t in declaration order. Embedded
// structs without an alias are flattened, as encoding/json does.
func (p *Provider) properties(t reflect.Type, parentIndex []int, building map[reflect.Type]*Model) []*Property {
	var props []*Property

	for i := range t.NumField() {
		field := t.Field(i)
		index := append(append([]int(nil), parentIndex...), i)

		if field.Anonymous {
			ft := baseType(field.Type)
			alias, skip := parseAliasTag(field, p.tagName)
			if skip {
				continue
			}
			if alias == "" && ft.Kind() == reflect.Struct && classify(ft) == KindComplex {
				props = append(props, p.properties(ft, index, building)...)
				continue
			}
			if !field.IsExported() {
				continue
			}
		} else if !field.IsExported() {
			continue
		}

		alias, skip := parseAliasTag(field, p.tagName)
		if override, ok := p.overrides.lookup(t, field.Name); ok {
			alias = override
		}

		prop := &Property{
			Name:  field.Name,
			Alias: alias,
			Index: index,
			Type:  field.Type,
			Rules: field.Tag.Get(validateTag),
		}
		_, prop.HasExpr = field.Tag.Lookup(exprTag)
		if skip {
			prop.Binding = BindingNever
		}
		parseBindTag(field, prop)

		prop.Model = p.build(field.Type, building)
		if prop.Model.Kind == KindFile && prop.Source == SourceValue {
			prop.Source = SourceFile
		}

		props = append(props, prop)
	}

	return props
}
