package timestep

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput marks parameters the engine refuses to run with.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooFine is returned when duration/step would exceed the iteration guard.
	ErrTooFine = errors.New("parameters too fine: iteration limit exceeded")

	// ErrDomain marks a correlation evaluated outside its range during a run.
	ErrDomain = errors.New("domain violation")
)

// InputError names the offending field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Quantity is a named result value.
type Quantity struct {
	Name  string
	Value float64
}

// Finite refuses results that overflowed: finite inputs of absurd magnitude
// can still drive a correlation to ±Inf or NaN.
func Finite(qs ...Quantity) error {
	for _, q := range qs {
		if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) {
			return Invalid(q.Name, "result is %v; the inputs are out of range", q.Value)
		}
	}
	return nil
}

// Invalid is a shorthand for &InputError{...}.
func Invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DomainError reports the step at which a run had to be aborted.
type DomainError struct {
	Step   int
	Time   float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("step %d (t=%gs): %s", e.Step, e.Time, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}
