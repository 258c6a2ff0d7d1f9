package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Option configures Load.
type Option func(*options)

type options struct {
	files  []string
	prefix string
}

// WithEnvFiles loads the given .env files before parsing. Unlike the default
// `.env`, a missing file is an error. Variables already set in the process
// environment win over file values.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.files = append(o.files, paths...)
	}
}

// WithPrefix prepends prefix to every variable name, e.g. "DEMO_" turns
// HTTP_ADDR into DEMO_HTTP_ADDR.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// Load parses the environment into a new T using `env` and `envDefault`
// field tags. Nested structs are parsed recursively.
//
// Example:
//
//	type Config struct {
//		HTTP   httpserver.Config
//		Binder modelbind.Config
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any](opts ...Option) (T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.files) == 0 {
		defaultEnvLoaded.Do(func() {
			// The default .env file is optional.
			_ = godotenv.Load()
		})
	} else if err := godotenv.Load(o.files...); err != nil {
		var zero T
		return zero, errors.Join(ErrLoadingEnvFile, err)
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{Prefix: o.prefix})
	if err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}
