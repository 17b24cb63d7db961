// Package domainerrors defines the coded error type shared by every layer.
//
// Services and platform packages return *Error values (optionally wrapped) so the
// transport layer can translate them into responses without string matching.
// Only CodeValidation and the other client-facing codes ever reach end users;
// internal codes are masked by httputil.WriteError.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error classification.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeRateLimited        Code = "rate_limited"
	CodeConfiguration      Code = "configuration_error"
	CodeDecryption         Code = "decryption_failed"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error carries a Code, a human-readable message and, for validation failures,
// the offending field and the constraint it broke.
type Error struct {
	Code       Code
	Message    string
	Field      string
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NewField creates a validation-style error naming the field and constraint.
func NewField(code Code, field, constraint, msg string) *Error {
	return &Error{Code: code, Message: msg, Field: field, Constraint: constraint}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsClientFacing reports whether the code may be shown to end users verbatim.
func (c Code) IsClientFacing() bool {
	switch c {
	case CodeBadRequest, CodeValidation, CodeInvalidInput, CodeUnauthorized,
		CodeForbidden, CodeNotFound, CodeConflict, CodeRateLimited:
		return true
	default:
		return false
	}
}
