// Package domainerrors provides coded errors shared by all domain modules.
//
// Services return these so the transport layer can translate outcomes into
// HTTP statuses at a single point. Stores should return sentinel errors
// (pkg/platform/sentinel) and let services wrap them with a code.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed input the caller can correct.
	CodeValidation Code = "validation_error"
	// CodeAuthz marks a policy denial. Never retried.
	CodeAuthz Code = "authorization_error"
	// CodeInvalidTransition marks an illegal event status transition.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeEventNotOpen marks a registration attempt against a non-open event.
	CodeEventNotOpen Code = "event_not_open"
	// CodeCapacityLocked marks a capacity edit after the event went active.
	CodeCapacityLocked Code = "capacity_locked"
	// CodeCapacityBelowDemand marks a capacity edit below the confirmed count.
	CodeCapacityBelowDemand Code = "capacity_below_demand"
	// CodeDuplicateRegistration marks a second live registration for the
	// same (event, student) pair.
	CodeDuplicateRegistration Code = "duplicate_registration"
	// CodeConsistency marks an audit write failure coupled to a mutation.
	// The mutation must roll back; an unaudited privileged action is as
	// severe as a lost update.
	CodeConsistency Code = "consistency_error"

	// CodeUnauthorized marks a missing, expired, or revoked credential.
	CodeUnauthorized Code = "unauthorized"

	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal_error"
	CodeTimeout    Code = "timeout"
)

// Error is a coded domain error. Construct via New or Wrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message while preserving the cause chain.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf returns the outermost code, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-facing message of the outermost coded error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code onto the HTTP status used by every handler.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeAuthz:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateRegistration, CodeInvalidTransition,
		CodeEventNotOpen, CodeCapacityLocked, CodeCapacityBelowDemand:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
