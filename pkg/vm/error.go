// Package vm provides error handling for the evaluator.
package vm

import (
	"fmt"
)

// ErrorType classifies a runtime error.
type ErrorType string

const (
	ErrorUndefinedName   ErrorType = "UNDEFINED_NAME"
	ErrorTypeMismatch    ErrorType = "TYPE_ERROR"
	ErrorValue           ErrorType = "VALUE_ERROR"
	ErrorDivisionByZero  ErrorType = "DIVISION_BY_ZERO"
	ErrorIndexOutOfRange ErrorType = "INDEX_OUT_OF_RANGE"
	ErrorArity           ErrorType = "ARITY_ERROR"
	ErrorAttribute       ErrorType = "ATTRIBUTE_ERROR"
	ErrorStepLimit       ErrorType = "STEP_LIMIT"
	ErrorDeadline        ErrorType = "DEADLINE"
)

// RuntimeError is a fault raised during program execution. Every runtime
// fault is terminal for the run it occurs in.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Line    int // 1-based source line if known, 0 otherwise
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// NewRuntimeError creates a new RuntimeError without line information.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{Type: errType, Message: message}
}

// NewUndefinedNameError reports a reference to a name that is neither a
// capability nor a prior binding.
func NewUndefinedNameError(name string) *RuntimeError {
	return NewRuntimeError(ErrorUndefinedName, fmt.Sprintf("name '%s' is not defined", name))
}

// NewTypeError reports a value of the wrong type reaching an operation.
func NewTypeError(format string, args ...any) *RuntimeError {
	return NewRuntimeError(ErrorTypeMismatch, fmt.Sprintf(format, args...))
}

// NewValueError reports a well-typed but invalid value.
func NewValueError(format string, args ...any) *RuntimeError {
	return NewRuntimeError(ErrorValue, fmt.Sprintf(format, args...))
}

// NewDivisionByZeroError creates a division by zero error.
func NewDivisionByZeroError(message string) *RuntimeError {
	return NewRuntimeError(ErrorDivisionByZero, message)
}

// NewIndexError creates an index out of range error.
func NewIndexError(message string) *RuntimeError {
	return NewRuntimeError(ErrorIndexOutOfRange, message)
}

// NewArityError reports a builtin called with the wrong argument count.
func NewArityError(format string, args ...any) *RuntimeError {
	return NewRuntimeError(ErrorArity, fmt.Sprintf(format, args...))
}

// NewStepLimitError is returned when a run exceeds its execution budget.
func NewStepLimitError(limit int) *RuntimeError {
	return NewRuntimeError(ErrorStepLimit, fmt.Sprintf("execution step limit exceeded (%d steps)", limit))
}

// NewDeadlineError is returned when the run's context is cancelled.
func NewDeadlineError() *RuntimeError {
	return NewRuntimeError(ErrorDeadline, "execution time limit exceeded")
}
