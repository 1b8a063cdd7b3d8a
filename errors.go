package marionette

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package wraps exactly one of
// them, so callers classify with errors.Is.
var (
	// ErrValidation marks a rejected mutation: unknown id, duplicate binding,
	// malformed hierarchy edge. State is left unchanged.
	ErrValidation = errors.New("validation error")

	// ErrState marks a call made in the wrong lifecycle state, such as
	// out-of-order time passed to a stateful sampler or a structural change
	// after the rig was finalized.
	ErrState = errors.New("state error")

	// ErrRange marks a signal value outside its declared domain. It is never
	// fatal: the value is clamped and the error is only reported.
	ErrRange = errors.New("range error")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func statef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

// RangeError reports a signal value that fell outside the signal's domain
// and was clamped.
type RangeError struct {
	Signal string
	Value  float64
	Domain Range
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: signal %q value %g outside [%g, %g]",
		ErrRange, e.Signal, e.Value, e.Domain.Min, e.Domain.Max)
}

// Is makes errors.Is(err, ErrRange) match.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}
