package errors

import (
	stderrors "errors"
)

// Code represents a typed error code. Every code maps to a distinct
// process exit status.
type Code string

// Autoscaler error codes.
const (
	ErrInvalidConfig         Code = "INVALID_CONFIG"
	ErrMalformedFilter       Code = "MALFORMED_FILTER"
	ErrPreflightFailed       Code = "PREFLIGHT_FAILED"
	ErrTransport             Code = "TRANSPORT"
	ErrUnrecognizedUnit      Code = "UNRECOGNIZED_UNIT"
	ErrNoAllocatableCapacity Code = "NO_ALLOCATABLE_CAPACITY"
	ErrFleetAPI              Code = "FLEET_API"
)

// exitCodes maps each Code to the status the process exits with.
// Status 2 is kept for unclassified failures.
var exitCodes = map[Code]int{
	ErrInvalidConfig:         3,
	ErrMalformedFilter:       4,
	ErrPreflightFailed:       5,
	ErrTransport:             6,
	ErrUnrecognizedUnit:      7,
	ErrNoAllocatableCapacity: 8,
	ErrFleetAPI:              9,
}

// ExitUnclassified is the status used for errors without a Code.
const ExitUnclassified = 2

// AutoscalerError represents a typed error with code, component, and optional wrapped error.
type AutoscalerError struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Component string `json:"component"`
	Err       error  `json:"-"`
}

// Error implements the error interface.
func (e *AutoscalerError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As compatibility.
func (e *AutoscalerError) Unwrap() error {
	return e.Err
}

// New builds an AutoscalerError wrapping err.
func New(code Code, component, message string, err error) *AutoscalerError {
	return &AutoscalerError{
		Code:      code,
		Message:   message,
		Component: component,
		Err:       err,
	}
}

// CodeOf returns the Code of the outermost AutoscalerError in err's chain,
// or "" if there is none.
func CodeOf(err error) Code {
	var ae *AutoscalerError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// ExitCode returns the process exit status for err. Nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[CodeOf(err)]; ok {
		return code
	}
	return ExitUnclassified
}
