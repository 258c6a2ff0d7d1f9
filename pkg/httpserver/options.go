package httpserver

import (
	"log/slog"
	"time"
)

// Option configures the HTTP server.
type Option func(*options)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("WithAddr: addr cannot be empty")
	}
	return func(o *options) { o.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	return durationOption("WithReadTimeout", d, func(o *options) { o.readTimeout = d })
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return durationOption("WithReadHeaderTimeout", d, func(o *options) { o.readHeaderTimeout = d })
}

func WithWriteTimeout(d time.Duration) Option {
	return durationOption("WithWriteTimeout", d, func(o *options) { o.writeTimeout = d })
}

func WithIdleTimeout(d time.Duration) Option {
	return durationOption("WithIdleTimeout", d, func(o *options) { o.idleTimeout = d })
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return durationOption("WithShutdownTimeout", d, func(o *options) { o.shutdownTimeout = d })
}

func durationOption(name string, d time.Duration, apply Option) Option {
	if d <= 0 {
		panic(name + ": duration must be > 0")
	}
	return apply
}

// WithLogger sets the server logger. Nil discards logs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStartHook registers a hook run once the listener is bound.
func WithStartHook(h Hook) Option {
	if h == nil {
		panic("WithStartHook: nil hook")
	}
	return func(o *options) { o.startHooks = append(o.startHooks, h) }
}

// WithStopHook registers a hook run after the server has shut down.
func WithStopHook(h Hook) Option {
	if h == nil {
		panic("WithStopHook: nil hook")
	}
	return func(o *options) { o.stopHooks = append(o.stopHooks, h) }
}
