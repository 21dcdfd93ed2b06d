// Package errs defines the error taxonomy shared by every layer of the
// contract engine. All three kinds are recoverable by the caller: the
// engine never panics on user-reachable input.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or self-contradictory contract terms,
// schedule configuration, or an unrecognized enumerant code. It is raised
// as early as possible, at init or schedule construction time.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// TransitionError reports an event that is inapplicable given the current
// lifecycle stage, ordering, or timestamp. The reason names the violated
// invariant.
type TransitionError struct {
	Reason string
}

func (e *TransitionError) Error() string {
	return "transition rejected: " + e.Reason
}

// MathError reports fixed-point arithmetic overflow, underflow, or division
// by zero during accrual or settlement computation.
type MathError struct {
	Reason string
}

func (e *MathError) Error() string {
	return "math error: " + e.Reason
}

// Validationf creates a ValidationError with a formatted reason.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Transitionf creates a TransitionError with a formatted reason.
func Transitionf(format string, args ...any) *TransitionError {
	return &TransitionError{Reason: fmt.Sprintf(format, args...)}
}

// Mathf creates a MathError with a formatted reason.
func Mathf(format string, args ...any) *MathError {
	return &MathError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsTransition reports whether err is (or wraps) a TransitionError.
func IsTransition(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// IsMath reports whether err is (or wraps) a MathError.
func IsMath(err error) bool {
	var target *MathError
	return errors.As(err, &target)
}
