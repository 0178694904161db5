package series

import (
	"errors"

	"Flashover/internal/calc/timestep"
)

// Outcome is the terminal state of a run.
type Outcome string

const (
	Completed       Outcome = "completed"
	Activated       Outcome = "activated"
	NotActivated    Outcome = "not_activated"
	InvalidInput    Outcome = "invalid_input"
	DomainViolation Outcome = "domain_violation"
	TooFine         Outcome = "too_fine"
)

// Computed reports whether the run produced usable numbers. Non-activation
// counts: it is a valid result, not a failure.
func (o Outcome) Computed() bool {
	switch o {
	case Completed, Activated, NotActivated:
		return true
	}
	return false
}

// Classify maps an engine error to the outcome reported to the caller.
// Unknown errors are treated as invalid input: every failure of an engine is
// deterministic given its parameters.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Completed
	case errors.Is(err, timestep.ErrTooFine):
		return TooFine
	case errors.Is(err, timestep.ErrDomain):
		return DomainViolation
	}
	return InvalidInput
}

// Message is the user-facing text for a failed outcome.
func Message(err error) string {
	switch Classify(err) {
	case TooFine:
		return "Time step is too fine for the duration; increase the time step or shorten the duration."
	case DomainViolation:
		return "Calculation stopped: " + err.Error()
	case InvalidInput:
		return "Insufficient input: " + err.Error()
	}
	return ""
}
