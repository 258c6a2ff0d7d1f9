package modelbind

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/formbind/pkg/logger"
	"github.com/dmitrymomot/formbind/pkg/metadata"
	"github.com/dmitrymomot/formbind/pkg/modelstate"
	"github.com/dmitrymomot/formbind/pkg/valueprovider"
)

const tracerName = "github.com/dmitrymomot/formbind/pkg/modelbind"

// Config holds ModelBinder settings loadable from the environment.
type Config struct {
	TagName         string `env:"FORMBIND_TAG_NAME" envDefault:"json"`         // TagName is the struct tag aliases are read from.
	MaxErrors       int    `env:"FORMBIND_MAX_ERRORS" envDefault:"200"`        // MaxErrors caps the errors recorded per bind.
	MaxIndex        int    `env:"FORMBIND_MAX_INDEX" envDefault:"1000"`        // MaxIndex bounds indexed collection binding.
	MaxMemory       int64  `env:"FORMBIND_MAX_MEMORY" envDefault:"10485760"`   // MaxMemory is the multipart form memory limit in bytes.
	MaxBodySize     int64  `env:"FORMBIND_MAX_BODY_SIZE" envDefault:"1048576"` // MaxBodySize limits bodies read by greedy binders.
	OverridesFile   string `env:"FORMBIND_OVERRIDES_FILE"`                     // OverridesFile is an optional YAML file with alias overrides.
	DefaultLanguage string `env:"FORMBIND_DEFAULT_LANGUAGE" envDefault:"en"`   // DefaultLanguage is used when a request has no Accept-Language.
}

// Option configures a ModelBinder.
type Option func(*ModelBinder)

// WithMetadata uses md for descriptors. Tag name, override and model
// factory options are ignored when it is set.
func WithMetadata(md *metadata.Provider) Option {
	return func(mb *ModelBinder) {
		mb.metadata = md
	}
}

// WithTagName sets the struct tag aliases are read from.
func WithTagName(name string) Option {
	return func(mb *ModelBinder) {
		if name != "" {
			mb.tagName = name
		}
	}
}

// WithOverrides applies alias overrides for types the caller does not own.
func WithOverrides(o metadata.Overrides) Option {
	return func(mb *ModelBinder) {
		mb.metadataOpts = append(mb.metadataOpts, metadata.WithOverrides(o))
	}
}

// WithModelFactory registers a constructor for t. Interface types can only
// be bound through one.
func WithModelFactory(t reflect.Type, f metadata.Factory) Option {
	return func(mb *ModelBinder) {
		mb.metadataOpts = append(mb.metadataOpts, metadata.WithFactory(t, f))
	}
}

// WithProvider registers binder providers consulted before the built-ins.
func WithProvider(p ...Provider) Option {
	return func(mb *ModelBinder) {
		mb.providers = append(mb.providers, p...)
	}
}

// WithObjectValidator adds object-level validators run after property validation.
func WithObjectValidator(v ...ObjectValidator) Option {
	return func(mb *ModelBinder) {
		mb.validators = append(mb.validators, v...)
	}
}

// WithMaxErrors caps the errors recorded per bind.
func WithMaxErrors(n int) Option {
	return func(mb *ModelBinder) {
		if n > 0 {
			mb.maxErrors = n
		}
	}
}

// WithMaxIndex bounds indexed collection binding.
func WithMaxIndex(n int) Option {
	return func(mb *ModelBinder) {
		if n > 0 {
			mb.maxIndex = n
		}
	}
}

// WithMaxMemory sets the multipart form memory limit.
func WithMaxMemory(n int64) Option {
	return func(mb *ModelBinder) {
		if n > 0 {
			mb.maxMemory = n
		}
	}
}

// WithMaxBodySize limits bodies read for greedy binders.
func WithMaxBodySize(n int64) Option {
	return func(mb *ModelBinder) {
		if n > 0 {
			mb.maxBodySize = n
		}
	}
}

// WithDefaultMessages sets the messages used when a request does not ask
// for a supported language.
func WithDefaultMessages(m *Messages) Option {
	return func(mb *ModelBinder) {
		if m != nil {
			mb.messages = m
		}
	}
}

// WithLogger sets the logger binders report to.
func WithLogger(l *slog.Logger) Option {
	return func(mb *ModelBinder) {
		if l != nil {
			mb.logger = l
		}
	}
}

// WithObserver sets the observer notified after every bind.
func WithObserver(o Observer) Option {
	return func(mb *ModelBinder) {
		if o != nil {
			mb.observer = o
		}
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(mb *ModelBinder) {
		if tp != nil {
			mb.tracer = tp.Tracer(tracerName)
		}
	}
}

// ModelBinder binds requests to Go values by wire name.
// It is safe for concurrent use.
type ModelBinder struct {
	metadata     *metadata.Provider
	metadataOpts []metadata.Option
	tagName      string
	providers    []Provider
	validators   []ObjectValidator
	maxErrors    int
	maxIndex     int
	maxMemory    int64
	maxBodySize  int64
	messages     *Messages
	logger       *slog.Logger
	observer     Observer
	tracer       trace.Tracer

	factory *Factory
}

// New returns a ModelBinder configured with opts.
func New(opts ...Option) *ModelBinder {
	mb := &ModelBinder{
		tagName:     metadata.DefaultTagName,
		maxErrors:   modelstate.DefaultMaxErrors,
		maxIndex:    DefaultMaxCollectionIndex,
		maxMemory:   valueprovider.DefaultMaxMemory,
		maxBodySize: valueprovider.DefaultMaxBodySize,
		messages:    defaultMessages,
		logger:      slog.New(slog.DiscardHandler),
		observer:    noopObserver{},
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(mb)
	}

	if mb.metadata == nil {
		mdOpts := append([]metadata.Option{metadata.WithTagName(mb.tagName)}, mb.metadataOpts...)
		mb.metadata = metadata.NewProvider(mdOpts...)
	}
	mb.factory = NewFactory(mb.metadata,
		WithProviders(mb.providers...),
		WithAggregator(NewAggregator(WithObjectValidators(mb.validators...))),
		WithFactoryMaxIndex(mb.maxIndex),
	)
	return mb
}

// NewFromConfig creates a ModelBinder from cfg. Only non-zero values are
// applied; opts are applied after them.
func NewFromConfig(cfg Config, opts ...Option) (*ModelBinder, error) {
	configOpts := make([]Option, 0, 8)

	if cfg.TagName != "" {
		configOpts = append(configOpts, WithTagName(cfg.TagName))
	}
	if cfg.MaxErrors > 0 {
		configOpts = append(configOpts, WithMaxErrors(cfg.MaxErrors))
	}
	if cfg.MaxIndex > 0 {
		configOpts = append(configOpts, WithMaxIndex(cfg.MaxIndex))
	}
	if cfg.MaxMemory > 0 {
		configOpts = append(configOpts, WithMaxMemory(cfg.MaxMemory))
	}
	if cfg.MaxBodySize > 0 {
		configOpts = append(configOpts, WithMaxBodySize(cfg.MaxBodySize))
	}
	if cfg.DefaultLanguage != "" {
		tag, err := language.Parse(cfg.DefaultLanguage)
		if err != nil {
			return nil, fmt.Errorf("modelbind: default language %q: %w", cfg.DefaultLanguage, err)
		}
		configOpts = append(configOpts, WithDefaultMessages(NewMessages(tag)))
	}
	if cfg.OverridesFile != "" {
		f, err := os.Open(cfg.OverridesFile)
		if err != nil {
			return nil, fmt.Errorf("modelbind: open overrides: %w", err)
		}
		defer f.Close()

		overrides, err := metadata.LoadOverrides(f)
		if err != nil {
			return nil, err
		}
		configOpts = append(configOpts, WithOverrides(overrides))
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...), nil
}

// BindOption configures a single bind.
type BindOption func(*bindOptions)

type bindOptions struct {
	prefix   string
	filter   PropertyFilter
	required bool
	messages *Messages
}

// Prefix binds the model from values under prefix (`user.name` for prefix
// "user"). When the request holds nothing under prefix the model binds
// from unprefixed names instead.
func Prefix(prefix string) BindOption {
	return func(o *bindOptions) {
		o.prefix = prefix
	}
}

// Filter limits which top-level properties are bound.
func Filter(f PropertyFilter) BindOption {
	return func(o *bindOptions) {
		o.filter = f
	}
}

// Required reports an error when the request holds no value for any property.
func Required() BindOption {
	return func(o *bindOptions) {
		o.required = true
	}
}

// Localize sets the messages errors are recorded with.
func Localize(m *Messages) BindOption {
	return func(o *bindOptions) {
		if m != nil {
			o.messages = m
		}
	}
}

// Bind binds values from vp into v, which must be a non-nil pointer.
//
// Binding problems are returned in the dictionary; the error is non-nil only
// when binding could not run: an invalid target, a model that cannot be
// constructed or a cancelled context. v may be partially populated then.
func (mb *ModelBinder) Bind(ctx context.Context, vp valueprovider.ValueProvider, v any, opts ...BindOption) (*modelstate.Dictionary, error) {
	o := bindOptions{messages: mb.messages}
	for _, opt := range opts {
		opt(&o)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidTarget, v)
	}
	target := rv.Elem()

	ctx, span := mb.tracer.Start(ctx, "modelbind.Bind", trace.WithAttributes(
		attribute.String("formbind.model", target.Type().String()),
		attribute.String("formbind.prefix", o.prefix),
	))
	defer span.End()

	start := time.Now()
	state, outcome, err := mb.bind(ctx, vp, target, o)

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("formbind.errors", state.ErrorCount()))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !state.IsValid():
		span.SetStatus(codes.Error, "validation failed")
	default:
		span.SetStatus(codes.Ok, "")
	}

	mb.logger.DebugContext(ctx, "model bound",
		logger.Model(target.Type().String()),
		logger.Outcome(outcome.String()),
		logger.ErrorCount(state.ErrorCount()),
		logger.Duration(elapsed),
	)
	mb.observer.ObserveBind(ctx, BindEvent{
		Model:    target.Type().String(),
		Prefix:   o.prefix,
		Outcome:  outcome,
		Errors:   state.ErrorCount(),
		Duration: elapsed,
		Err:      err,
	})

	return state, err
}

func (mb *ModelBinder) bind(ctx context.Context, vp valueprovider.ValueProvider, target reflect.Value, o bindOptions) (*modelstate.Dictionary, Outcome, error) {
	state := modelstate.New(modelstate.WithMaxErrors(mb.maxErrors))

	binder, m, err := mb.factory.BinderFor(target.Type())
	if err != nil {
		return state, OutcomeFailed, err
	}

	prefix := o.prefix
	if prefix != "" && !vp.ContainsPrefix(prefix) {
		prefix = ""
	}

	bc := Context{
		ModelName:      prefix,
		Metadata:       m,
		Model:          target,
		ValueProvider:  vp,
		IsTopLevel:     true,
		IsRequired:     o.required,
		PropertyFilter: o.filter,
		Messages:       o.messages,
		Logger:         mb.logger,
		MaxErrors:      mb.maxErrors,
	}

	res, err := binder.Bind(ctx, bc)
	state.Merge(res.State)
	if err != nil {
		return state, OutcomeFailed, err
	}

	switch {
	case res.IsSet() && res.Value.IsValid():
		target.Set(toType(res.Value, target.Type()))
	case res.Outcome == OutcomeNone && o.required && !m.IsComplex():
		addFieldError(state, prefix, o.messages.MissingBindRequiredValue(bc.displayName()))
	}
	return state, res.Outcome, nil
}

// BindRequest binds every value source of r into v: route parameters, the
// form or body, then the query string. Messages follow the request's
// Accept-Language header.
func (mb *ModelBinder) BindRequest(r *http.Request, v any, opts ...BindOption) (*modelstate.Dictionary, error) {
	vp, err := valueprovider.FromRequest(r,
		valueprovider.WithMaxMemory(mb.maxMemory),
		valueprovider.WithMaxBodySize(mb.maxBodySize),
	)
	if err != nil {
		return nil, err
	}
	return mb.Bind(r.Context(), vp, v, append([]BindOption{Localize(mb.messagesFor(r))}, opts...)...)
}

func (mb *ModelBinder) messagesFor(r *http.Request) *Messages {
	if al := r.Header.Get("Accept-Language"); al != "" {
		if m, ok := matchMessages(al); ok {
			return m
		}
	}
	return mb.messages
}

// Query returns a request binder reading the query string. The binder
// returns modelstate.ValidationError when any field fails.
func (mb *ModelBinder) Query(opts ...BindOption) func(r *http.Request, v any) error {
	return mb.handlerBinder(func(r *http.Request) (valueprovider.ValueProvider, error) {
		return valueprovider.Query(r), nil
	}, opts)
}

// Form returns a request binder reading url-encoded and multipart forms.
func (mb *ModelBinder) Form(opts ...BindOption) func(r *http.Request, v any) error {
	return mb.handlerBinder(func(r *http.Request) (valueprovider.ValueProvider, error) {
		return valueprovider.Form(r, mb.maxMemory)
	}, opts)
}

// Route returns a request binder reading chi URL parameters.
func (mb *ModelBinder) Route(opts ...BindOption) func(r *http.Request, v any) error {
	return mb.handlerBinder(func(r *http.Request) (valueprovider.ValueProvider, error) {
		return valueprovider.Route(r), nil
	}, opts)
}

// Request returns a request binder reading every value source, as BindRequest does.
func (mb *ModelBinder) Request(opts ...BindOption) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		state, err := mb.BindRequest(r, v, opts...)
		if err != nil {
			return err
		}
		return state.Err()
	}
}

func (mb *ModelBinder) handlerBinder(source func(*http.Request) (valueprovider.ValueProvider, error), opts []BindOption) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		vp, err := source(r)
		if err != nil {
			return err
		}
		state, err := mb.Bind(r.Context(), vp, v, append([]BindOption{Localize(mb.messagesFor(r))}, opts...)...)
		if err != nil {
			return err
		}
		return state.Err()
	}
}

var defaultBinder = New()

// Default returns the package-level ModelBinder.
func Default() *ModelBinder {
	return defaultBinder
}

// Query binds the query string with the default ModelBinder.
func Query(opts ...BindOption) func(r *http.Request, v any) error {
	return defaultBinder.Query(opts...)
}

// Form binds forms with the default ModelBinder.
func Form(opts ...BindOption) func(r *http.Request, v any) error {
	return defaultBinder.Form(opts...)
}

// Route binds chi URL parameters with the default ModelBinder.
func Route(opts ...BindOption) func(r *http.Request, v any) error {
	return defaultBinder.Route(opts...)
}

// Request binds every request value source with the default ModelBinder.
func Request(opts ...BindOption) func(r *http.Request, v any) error {
	return defaultBinder.Request(opts...)
}
