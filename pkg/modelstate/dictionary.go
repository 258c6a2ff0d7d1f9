package modelstate

import (
	"errors"

	"github.com/dmitrymomot/formbind/pkg/modelname"
)

// DefaultMaxErrors bounds the number of errors a single bind may record.
const DefaultMaxErrors = 200

// ValidationState is the validation status of a field.
type ValidationState uint8

const (
	Unvalidated ValidationState = iota
	Invalid
	Valid
	Skipped
)

func (s ValidationState) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	case Skipped:
		return "skipped"
	default:
		return "unvalidated"
	}
}

// Error is a single recorded error. Err is set when the error originates
// from a Go error rather than a message.
type Error struct {
	Message string
	Err     error
}

// Entry holds everything recorded for one composite field name.
type Entry struct {
	Key            string
	RawValue       []string
	AttemptedValue string
	Errors         []Error
	State          ValidationState
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithMaxErrors caps the number of errors. Values below 1 are ignored.
func WithMaxErrors(n int) Option {
	return func(d *Dictionary) {
		if n > 0 {
			d.maxErrors = n
		}
	}
}

// Dictionary maps composite field names to their binding state.
// It is not safe for concurrent use; binding is a single sequential pass.
type Dictionary struct {
	entries    map[string]*Entry
	keys       []string
	maxErrors  int
	errorCount int
	maxReached bool
}

// New returns an empty dictionary.
func New(opts ...Option) *Dictionary {
	d := &Dictionary{
		entries:   make(map[string]*Entry),
		maxErrors: DefaultMaxErrors,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Spawn returns an empty dictionary sharing d's limits.
func (d *Dictionary) Spawn() *Dictionary {
	return New(WithMaxErrors(d.maxErrors))
}

func (d *Dictionary) entry(key string) *Entry {
	if e, ok := d.entries[key]; ok {
		return e
	}
	e := &Entry{Key: key}
	d.entries[key] = e
	d.keys = append(d.keys, key)
	return e
}

// Entry returns the entry recorded for key.
func (d *Dictionary) Entry(key string) (*Entry, bool) {
	e, ok := d.entries[key]
	return e, ok
}

// TryAddError records message against key. It returns false once the error
// limit has been reached.
func (d *Dictionary) TryAddError(key, message string) bool {
	return d.add(key, Error{Message: message})
}

// TryAddException records err against key. It returns false once the error
// limit has been reached.
func (d *Dictionary) TryAddException(key string, err error) bool {
	if err == nil {
		return false
	}
	return d.add(key, Error{Message: err.Error(), Err: err})
}

// AddError records message against key, ignoring the result of the limit check.
func (d *Dictionary) AddError(key, message string) {
	_ = d.TryAddError(key, message)
}

func (d *Dictionary) add(key string, e Error) bool {
	if d.errorCount >= d.maxErrors-1 {
		d.recordMaxReached()
		return false
	}
	entry := d.entry(key)
	entry.Errors = append(entry.Errors, e)
	entry.State = Invalid
	d.errorCount++
	return true
}

func (d *Dictionary) recordMaxReached() {
	if d.maxReached {
		return
	}
	d.maxReached = true
	entry := d.entry("")
	entry.Errors = append(entry.Errors, Error{Message: ErrTooManyErrors.Error(), Err: ErrTooManyErrors})
	entry.State = Invalid
	d.errorCount++
}

// HasReachedMaxErrors reports whether further errors are being dropped.
func (d *Dictionary) HasReachedMaxErrors() bool {
	return d.maxReached
}

// SetValue records the raw submitted values and the attempted string for key.
func (d *Dictionary) SetValue(key string, raw []string, attempted string) {
	e := d.entry(key)
	e.RawValue = raw
	e.AttemptedValue = attempted
}

// MarkValid marks key as validated without errors. Invalid entries stay invalid.
func (d *Dictionary) MarkValid(key string) {
	if e := d.entry(key); e.State != Invalid {
		e.State = Valid
	}
}

// MarkSkipped marks key as intentionally not validated.
func (d *Dictionary) MarkSkipped(key string) {
	if e := d.entry(key); e.State != Invalid {
		e.State = Skipped
	}
}

// FieldValidationState aggregates the state of key and every key nested under it:
// any invalid entry makes the field invalid, otherwise any unvalidated entry
// makes it unvalidated. A field with no entries is unvalidated.
func (d *Dictionary) FieldValidationState(key string) ValidationState {
	found := false
	state := Valid
	for _, k := range d.keys {
		if !modelname.HasPrefix(k, key) {
			continue
		}
		found = true
		switch d.entries[k].State {
		case Invalid:
			return Invalid
		case Unvalidated:
			state = Unvalidated
		}
	}
	if !found {
		return Unvalidated
	}
	return state
}

// IsValidField reports whether no error has been recorded for key or any key nested under it.
func (d *Dictionary) IsValidField(key string) bool {
	return d.FieldValidationState(key) != Invalid
}

// IsValid reports whether the dictionary holds no errors.
func (d *Dictionary) IsValid() bool {
	return d.errorCount == 0
}

// ErrorCount returns the number of recorded errors.
func (d *Dictionary) ErrorCount() int {
	return d.errorCount
}

// Len returns the number of keys.
func (d *Dictionary) Len() int {
	return len(d.keys)
}

// Keys returns the recorded keys in insertion order.
func (d *Dictionary) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Errors returns the messages recorded for key.
func (d *Dictionary) Errors(key string) []string {
	e, ok := d.entries[key]
	if !ok {
		return nil
	}
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		messages = append(messages, err.Message)
	}
	return messages
}

// Merge copies every entry of other into d, preserving order and limits.
func (d *Dictionary) Merge(other *Dictionary) {
	if other == nil || other == d {
		return
	}
	for _, key := range other.keys {
		src := other.entries[key]
		dst := d.entry(key)
		if src.RawValue != nil {
			dst.RawValue = src.RawValue
			dst.AttemptedValue = src.AttemptedValue
		}
		for _, e := range src.Errors {
			if errors.Is(e.Err, ErrTooManyErrors) {
				d.recordMaxReached()
				continue
			}
			d.add(key, e)
		}
		if dst.State != Invalid && src.State != Unvalidated {
			dst.State = src.State
		}
	}
}

// ValidationError returns the recorded errors keyed by field name.
func (d *Dictionary) ValidationError() ValidationError {
	ve := NewValidationError()
	for _, key := range d.keys {
		for _, e := range d.entries[key].Errors {
			ve.Add(key, e.Message)
		}
	}
	return ve
}

// Err returns ValidationError when the dictionary holds errors and nil otherwise.
func (d *Dictionary) Err() error {
	if d.IsValid() {
		return nil
	}
	return d.ValidationError()
}
