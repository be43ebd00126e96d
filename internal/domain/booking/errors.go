package booking

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrNoAvailability    = errors.New("no room unit available for the requested dates")
	ErrUnitUnavailable   = errors.New("room unit unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid booking state")
	ErrPersistence       = errors.New("persistence error")
	ErrExhaustedRetries  = errors.New("reference code generation exhausted retries")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func notFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrNotFound, ErrNoAvailability, ErrUnitUnavailable,
		ErrInvalidTransition, ErrInvalidState, ErrPersistence, ErrExhaustedRetries,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorKind is the metrics label for err.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoAvailability):
		return "no_availability"
	case errors.Is(err, ErrUnitUnavailable):
		return "unit_unavailable"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrExhaustedRetries):
		return "exhausted_retries"
	default:
		return "persistence"
	}
}
