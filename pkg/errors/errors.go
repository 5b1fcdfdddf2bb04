package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Severity distinguishes hard failures from conditions that only warrant a notice.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Status   int      `json:"status"`
	Severity Severity `json:"severity,omitempty"`
	Err      error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so clones and wraps compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Severity: SeverityError}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err, Severity: SeverityError}
}

// Degraded wraps a persistence failure as a warning-level condition.
func Degraded(err error, message string) *Error {
	e := Wrap(err, ErrPersistenceDegraded.Code, ErrPersistenceDegraded.Status, message)
	e.Severity = SeverityWarning
	return e
}

// Predefined errors for common scenarios.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "no active session")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidTimeRange    = New("INVALID_TIME_RANGE", http.StatusBadRequest, "end time must be after start time")
	ErrCapacityExceeded    = New("CAPACITY_EXCEEDED", http.StatusBadRequest, "class capacity exceeded")
	ErrMonitorRequired     = New("MONITOR_REQUIRED", http.StatusBadRequest, "a monitor must be selected")
	ErrUnknownStudent      = New("UNKNOWN_STUDENT", http.StatusBadRequest, "student does not exist")
	ErrPendingChange       = New("PENDING_CHANGE", http.StatusConflict, "another change is awaiting confirmation")
	ErrNoPendingChange     = New("NO_PENDING_CHANGE", http.StatusConflict, "no change is awaiting confirmation")
	ErrPersistenceDegraded = &Error{Code: "PERSISTENCE_DEGRADED", Status: http.StatusServiceUnavailable, Message: "changes kept locally, remote save failed", Severity: SeverityWarning}
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsWarning reports whether err only degrades the operation instead of failing it.
func IsWarning(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Severity == SeverityWarning
}
