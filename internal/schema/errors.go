// Package schema defines template parameter schemas and validates raw
// user-supplied parameter values against them. Validation is total: every
// violation is collected and reported in a single pass so the caller gets a
// complete diagnostic, not just the first failure.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for parameter validation.
var (
	// ErrInvalidParams indicates one or more parameter values failed validation.
	ErrInvalidParams = errors.New("schema: invalid parameters")

	// ErrRequiredParam indicates a required parameter was not supplied.
	ErrRequiredParam = errors.New("schema: required parameter missing")

	// ErrWrongType indicates a value could not be coerced to the declared type.
	ErrWrongType = errors.New("schema: wrong parameter type")

	// ErrNotInChoices indicates a value outside the allowed set of a choice field.
	ErrNotInChoices = errors.New("schema: value not in allowed choices")

	// ErrUnknownParam indicates a parameter name not declared by the schema.
	ErrUnknownParam = errors.New("schema: unknown parameter")

	// ErrInvalidSchema indicates the schema itself is malformed.
	ErrInvalidSchema = errors.New("schema: invalid parameter schema")
)

// ValidationError represents a single validation error with field context.
type ValidationError struct {
	Field   string
	Message string
	Value   any
	Wrapped error // underlying sentinel error for errors.Is support
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("parameter %q: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("parameter %q: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Wrapped
}

// ValidationErrors is the collection of all violations found in one pass.
type ValidationErrors struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation: no errors"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed with %d error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Is supports errors.Is by checking contained validation errors against the target.
func (e *ValidationErrors) Is(target error) bool {
	if target == ErrInvalidParams {
		return true
	}
	for _, ve := range e.Errors {
		if ve.Wrapped != nil && errors.Is(ve.Wrapped, target) {
			return true
		}
	}
	return false
}

// Fields returns the offending field names, in report order.
func (e *ValidationErrors) Fields() []string {
	fields := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		fields[i] = ve.Field
	}
	return fields
}
