// Package dErrors defines the coded error type services return to callers.
//
// Every precondition failure carries a Code naming the invariant that was
// violated, so transports can translate errors into meaningful responses
// instead of a generic "failed". Store and infrastructure layers return
// sentinel errors (pkg/platform/sentinel); services wrap them here.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// Generic codes shared by every subsystem.
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal_error"
	CodeUnavailable  Code = "store_unavailable"

	// Election-flow codes. Each names the specific business rule that
	// rejected the request, per the auditable-voting requirement.
	CodeNotEligible       Code = "not_eligible"
	CodeAlreadyVoted      Code = "already_voted"
	CodeAlreadyRegistered Code = "already_registered"
	CodeDuplicateVote     Code = "duplicate_vote"
	CodeFaceMismatch      Code = "face_mismatch"
	CodeWindowNotOpen     Code = "window_not_open"
	CodeWindowClosed      Code = "window_closed"
	CodeResultsNotReady   Code = "results_not_yet_available"
)

// Error is a coded domain error, optionally wrapping a cause.
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

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-safe message from err. Non-domain errors
// yield an empty message so internals are never leaked to transports.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
