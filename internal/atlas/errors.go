package atlas

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes atlas errors.
type ErrorCode string

const (
	// ErrCodeUnknownVariable indicates a dependency names an undeclared variable.
	ErrCodeUnknownVariable ErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeUnresolvedSignature indicates a region signature has no map entry.
	ErrCodeUnresolvedSignature ErrorCode = "UNRESOLVED_SIGNATURE"

	// ErrCodeInvalidBounds indicates a bound, rate or threshold is unusable.
	ErrCodeInvalidBounds ErrorCode = "INVALID_BOUNDS"

	// ErrCodeInvalidModel indicates a structural model defect.
	ErrCodeInvalidModel ErrorCode = "INVALID_MODEL"
)

// UnknownVariableError reports a source name that is not a declared variable.
type UnknownVariableError struct {
	// Target is the variable declaring the dependency.
	Target string

	// Source is the unresolved name.
	Source string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("%s: variable %q depends on unknown variable %q",
		ErrCodeUnknownVariable, e.Target, e.Source)
}

// UnresolvedSignatureError reports a region whose signature for Variable
// matches no interaction map entry.
type UnresolvedSignatureError struct {
	Region    int
	Variable  string
	Signature Signature
}

func (e *UnresolvedSignatureError) Error() string {
	return fmt.Sprintf("%s: region %d: no interaction map entry for variable %q with signature (%s)",
		ErrCodeUnresolvedSignature, e.Region, e.Variable, e.Signature.String())
}

// InvalidBoundsError reports a non-finite input or an empty phase-space interval.
type InvalidBoundsError struct {
	// Variable is empty for model-wide settings (safety factor, delta).
	Variable string
	Field    string
	Value    float64
	Reason   string
}

func (e *InvalidBoundsError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("%s: %s = %v: %s", ErrCodeInvalidBounds, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: variable %q: %s = %v: %s",
		ErrCodeInvalidBounds, e.Variable, e.Field, e.Value, e.Reason)
}

// InvalidModelError reports a structural defect in the model description.
type InvalidModelError struct {
	Variable string
	Field    string
	Message  string
}

func (e *InvalidModelError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("%s: %s: %s", ErrCodeInvalidModel, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: variable %q: %s: %s", ErrCodeInvalidModel, e.Variable, e.Field, e.Message)
}

// IsUnknownVariable reports whether err wraps an UnknownVariableError.
func IsUnknownVariable(err error) bool {
	var e *UnknownVariableError
	return errors.As(err, &e)
}

// IsUnresolvedSignature reports whether err wraps an UnresolvedSignatureError.
func IsUnresolvedSignature(err error) bool {
	var e *UnresolvedSignatureError
	return errors.As(err, &e)
}

// IsInvalidBounds reports whether err wraps an InvalidBoundsError.
func IsInvalidBounds(err error) bool {
	var e *InvalidBoundsError
	return errors.As(err, &e)
}

// IsInvalidModel reports whether err wraps an InvalidModelError.
func IsInvalidModel(err error) bool {
	var e *InvalidModelError
	return errors.As(err, &e)
}

// CodeOf returns the ErrorCode carried by err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	switch {
	case IsUnknownVariable(err):
		return ErrCodeUnknownVariable
	case IsUnresolvedSignature(err):
		return ErrCodeUnresolvedSignature
	case IsInvalidBounds(err):
		return ErrCodeInvalidBounds
	case IsInvalidModel(err):
		return ErrCodeInvalidModel
	default:
		return ""
	}
}
