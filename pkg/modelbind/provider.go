package modelbind

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/validator"
)

// Provider offers a binder for a model or declines by returning a nil Binder.
type Provider interface {
	Binder(pc *ProviderContext) (Binder, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(pc *ProviderContext) (Binder, error)

// Binder implements Provider.
func (f ProviderFunc) Binder(pc *ProviderContext) (Binder, error) {
	return f(pc)
}

// ProviderContext describes the model a binder is requested for. It is only
// valid for the duration of the Provider.Binder call.
type ProviderContext struct {
	Metadata *metadata.Model
	Source   metadata.Source

	factory *Factory
}

// CreateBinder resolves the binder for a model nested in the current one.
func (pc *ProviderContext) CreateBinder(m *metadata.Model) (Binder, error) {
	return pc.factory.binderLocked(m, metadata.SourceValue)
}

// CreatePropertyBinder resolves the binder for a property, honouring its source.
func (pc *ProviderContext) CreatePropertyBinder(p *metadata.Property) (Binder, error) {
	return pc.factory.binderLocked(p.Model, p.Source)
}

// Aggregator returns the validation aggregator composite binders use.
func (pc *ProviderContext) Aggregator() *Aggregator {
	return pc.factory.aggregator
}

// MaxIndex returns the collection index limit.
func (pc *ProviderContext) MaxIndex() int {
	return pc.factory.maxIndex
}

// Resolver returns a resolver for concrete types discovered while binding.
func (pc *ProviderContext) Resolver() BinderResolver {
	return pc.factory.BinderFor
}

// BodyProvider offers BodyBinder for properties bound from the request body.
func BodyProvider() Provider {
	return ProviderFunc(func(pc *ProviderContext) (Binder, error) {
		if pc.Source != metadata.SourceBody {
			return nil, nil
		}
		return NewBodyBinder(pc.Metadata), nil
	})
}

// FileProvider offers FileBinder for uploaded files.
func FileProvider() Provider {
	return ProviderFunc(func(pc *ProviderContext) (Binder, error) {
		if pc.Metadata.Kind != metadata.KindFile {
			return nil, nil
		}
		return NewFileBinder(pc.Metadata), nil
	})
}

// SimpleProvider offers SimpleBinder for leaf values.
func SimpleProvider() Provider {
	return ProviderFunc(func(pc *ProviderContext) (Binder, error) {
		if pc.Metadata.Kind != metadata.KindSimple {
			return nil, nil
		}
		return NewSimpleBinder(pc.Metadata), nil
	})
}

// CollectionProvider offers CollectionBinder for slices and arrays.
func CollectionProvider() Provider {
	return ProviderFunc(func(pc *ProviderContext) (Binder, error) {
		if !pc.Metadata.IsCollection() {
			return nil, nil
		}
		elem, err := pc.CreateBinder(pc.Metadata.Element)
		if err != nil {
			return nil, err
		}
		return NewCollectionBinder(pc.Metadata, elem, pc.MaxIndex()), nil
	})
}

// CompositeProvider offers CompositeBinder for structs and AbstractBinder
// for interfaces. Properties of types no provider supports (maps, channels,
// functions) are left out of binding.
func CompositeProvider() Provider {
	return ProviderFunc(func(pc *ProviderContext) (Binder, error) {
		switch pc.Metadata.Kind {
		case metadata.KindAbstract:
			return NewAbstractBinder(pc.Metadata, pc.Resolver()), nil
		case metadata.KindComplex:
		default:
			return nil, nil
		}

		properties := make([]PropertyBinder, 0, len(pc.Metadata.Properties))
		for _, p := range pc.Metadata.Properties {
			if !p.IsBindingAllowed() {
				continue
			}
			if _, err := validator.ParseTag(p.Rules); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", pc.Metadata.Type, p.Name, err)
			}
			b, err := pc.CreatePropertyBinder(p)
			if errors.Is(err, ErrNoBinder) {
				continue
			}
			if err != nil {
				return nil, err
			}
			properties = append(properties, PropertyBinder{Property: p, Binder: b})
		}
		return NewCompositeBinder(pc.Metadata, properties, pc.Aggregator()), nil
	})
}

// DefaultProviders returns the built-in providers in resolution order.
func DefaultProviders() []Provider {
	return []Provider{
		BodyProvider(),
		FileProvider(),
		SimpleProvider(),
		CollectionProvider(),
		CompositeProvider(),
	}
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithProviders registers providers consulted before the built-ins.
func WithProviders(p ...Provider) FactoryOption {
	return func(f *Factory) {
		f.providers = append(append([]Provider(nil), p...), f.providers...)
	}
}

// WithAggregator sets the validation aggregator.
func WithAggregator(a *Aggregator) FactoryOption {
	return func(f *Factory) {
		if a != nil {
			f.aggregator = a
		}
	}
}

// WithFactoryMaxIndex bounds indexed collection binding.
func WithFactoryMaxIndex(n int) FactoryOption {
	return func(f *Factory) {
		if n > 0 {
			f.maxIndex = n
		}
	}
}

type cacheKey struct {
	model  *metadata.Model
	source metadata.Source
}

// Factory resolves and caches binders per model and source. It is safe for
// concurrent use.
type Factory struct {
	metadata   *metadata.Provider
	providers  []Provider
	aggregator *Aggregator
	maxIndex   int

	mu    sync.Mutex
	cache map[cacheKey]Binder
}

// NewFactory returns a Factory reading descriptors from md.
func NewFactory(md *metadata.Provider, opts ...FactoryOption) *Factory {
	if md == nil {
		md = metadata.Default()
	}
	f := &Factory{
		metadata:   md,
		providers:  DefaultProviders(),
		aggregator: NewAggregator(),
		maxIndex:   DefaultMaxCollectionIndex,
		cache:      make(map[cacheKey]Binder),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Metadata returns the descriptor provider.
func (f *Factory) Metadata() *metadata.Provider {
	return f.metadata
}

// BinderFor returns the binder and descriptor for t.
func (f *Factory) BinderFor(t reflect.Type) (Binder, *metadata.Model, error) {
	m, err := f.metadata.ForType(t)
	if err != nil {
		return nil, nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := f.binderLocked(m, metadata.SourceValue)
	if err != nil {
		return nil, nil, err
	}
	return b, m, nil
}

func (f *Factory) binderLocked(m *metadata.Model, src metadata.Source) (Binder, error) {
	key := cacheKey{model: m, source: src}
	if b, ok := f.cache[key]; ok {
		return b, nil
	}

	// Self-referential models resolve to the placeholder until the
	// outer call completes.
	ph := &placeholderBinder{model: m}
	f.cache[key] = ph

	pc := &ProviderContext{Metadata: m, Source: src, factory: f}
	for _, p := range f.providers {
		b, err := p.Binder(pc)
		if err != nil {
			delete(f.cache, key)
			return nil, err
		}
		if b != nil {
			ph.inner = b
			f.cache[key] = b
			return b, nil
		}
	}

	delete(f.cache, key)
	return nil, fmt.Errorf("%w: %s", ErrNoBinder, m.Type)
}

type placeholderBinder struct {
	model *metadata.Model
	inner Binder
}

func (p *placeholderBinder) Bind(ctx context.Context, bc Context) (Result, error) {
	if p.inner == nil {
		return noResult(bc.newState()), fmt.Errorf("%w: %s", ErrNoBinder, p.model.Type)
	}
	return p.inner.Bind(ctx, bc)
}
