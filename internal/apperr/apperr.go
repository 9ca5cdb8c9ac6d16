// Package apperr defines the application error taxonomy. Every failure
// surfaced to an HTTP handler is one of these kinds; handlers map kinds to
// status codes and never leak raw store errors to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// InvalidInput means a request had missing or malformed fields.
	InvalidInput Kind = iota
	// InvalidReference means a referenced entity (course, timeslot, ...) does not exist.
	InvalidReference
	// IncompleteSchedulingWindow means a lab entry has no consecutive same-day slot.
	IncompleteSchedulingWindow
	// SchedulingConflict means a section or faculty is already booked in an occupied slot.
	SchedulingConflict
	// AlreadyFinalized means the attendance group is locked against non-forced writes.
	AlreadyFinalized
	// ExpiredToken means a QR timestamp fell outside the validity window.
	ExpiredToken
	// IdentityConflict means a face fingerprint is already bound to another student.
	IdentityConflict
	// Unauthorized means credentials or tokens did not check out.
	Unauthorized
	// NotFound means the target entity is absent on update/delete.
	NotFound
	// StoreFailure means the underlying data store failed; terminal for the request.
	StoreFailure
)

// Error is an application error carrying a kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause. The wrapped error is logged server-side only.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Store wraps a data-store failure with a generic client message.
func Store(err error) *Error {
	return &Error{Kind: StoreFailure, Message: "DB error", Err: err}
}

// KindOf extracts the kind from err, defaulting to StoreFailure.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return StoreFailure
}

// MessageOf extracts the client-safe message from err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

// HTTPStatus maps an error to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidInput, InvalidReference, IncompleteSchedulingWindow, ExpiredToken, IdentityConflict:
		return http.StatusBadRequest
	case SchedulingConflict, AlreadyFinalized:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
