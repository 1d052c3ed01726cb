// Package dErrors provides coded domain errors. Services attach a Code to
// every rejection so callers can branch on kind without string matching, and
// the HTTP layer can translate codes into status lines uniformly.
//
// All codes describe synchronous, all-or-nothing rejections of a single
// operation; none implies partial state mutation or a retryable transport
// fault.
package dErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// Access control and registration.
	CodeUnauthorized      Code = "unauthorized"
	CodeAlreadyRegistered Code = "already_registered"

	// Query coordinator lifecycle.
	CodeNoActiveQuery    Code = "no_active_query"
	CodeAlreadyProcessed Code = "already_processed"
	CodeNotProcessed     Code = "not_processed"
	CodeInvalidProof     Code = "invalid_proof"
	CodeUnknownRequest   Code = "unknown_request"
	CodeNotApproved      Code = "not_approved"

	// Governance lifecycle.
	CodeVotingClosed    Code = "voting_closed"
	CodeVotingOngoing   Code = "voting_ongoing"
	CodeAlreadyVoted    Code = "already_voted"
	CodeAlreadyExecuted Code = "already_executed"

	// Ambient.
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal"
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

func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match two coded errors by code and message, so tests can
// compare against a freshly constructed expectation.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// New builds a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil cause
// yields nil so call sites can wrap unconditionally.
func Wrap(cause error, code Code, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// CodeOf extracts the outermost code, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its transport status. Codes the map does not
// know default to 500 so new rejections fail loudly rather than leaking 200s.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeAlreadyRegistered, CodeAlreadyProcessed, CodeAlreadyVoted,
		CodeAlreadyExecuted, CodeConflict:
		return http.StatusConflict
	case CodeNoActiveQuery, CodeNotFound:
		return http.StatusNotFound
	case CodeNotProcessed, CodeVotingClosed, CodeVotingOngoing, CodeNotApproved:
		return http.StatusUnprocessableEntity
	case CodeInvalidProof, CodeUnknownRequest:
		return http.StatusBadRequest
	case CodeBadRequest, CodeInvalidInput, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
