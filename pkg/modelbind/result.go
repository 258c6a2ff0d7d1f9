package modelbind

import (
	"reflect"

	"github.com/dmitrymomot/formbind/pkg/modelstate"
)

// Outcome is the tri-state result of binding one model or property.
type Outcome uint8

const (
	// OutcomeNone means nothing was attempted: no value was submitted.
	OutcomeNone Outcome = iota
	// OutcomeFailed means a value was submitted but could not be bound.
	OutcomeFailed
	// OutcomeSet means Value holds the bound value, possibly with validation errors.
	OutcomeSet
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeSet:
		return "set"
	default:
		return "none"
	}
}

// Result is what a binder hands back to its caller: the value and the
// errors recorded while producing it. The caller merges State into its own.
type Result struct {
	Value   reflect.Value
	Outcome Outcome
	State   *modelstate.Dictionary
}

// IsSet reports whether a value was bound.
func (r Result) IsSet() bool {
	return r.Outcome == OutcomeSet
}

func setResult(v reflect.Value, state *modelstate.Dictionary) Result {
	return Result{Value: v, Outcome: OutcomeSet, State: state}
}

func failedResult(state *modelstate.Dictionary) Result {
	return Result{Outcome: OutcomeFailed, State: state}
}

func noResult(state *modelstate.Dictionary) Result {
	return Result{Outcome: OutcomeNone, State: state}
}
