package modelbind

import (
	"context"
	"time"
)

// BindEvent describes one completed top-level bind.
type BindEvent struct {
	// Model is the Go type name of the bound value.
	Model    string
	Prefix   string
	Outcome  Outcome
	Errors   int
	Duration time.Duration
	// Err is the fatal error that aborted the bind, if any.
	Err error
}

// Observer receives bind events, e.g. to export metrics.
type Observer interface {
	ObserveBind(ctx context.Context, e BindEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, e BindEvent)

// ObserveBind implements Observer.
func (f ObserverFunc) ObserveBind(ctx context.Context, e BindEvent) {
	f(ctx, e)
}

type noopObserver struct{}

func (noopObserver) ObserveBind(context.Context, BindEvent) {}
