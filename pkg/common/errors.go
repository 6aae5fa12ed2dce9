package common

import "net/http"

// ErrorKind classifies an AppError for callers that need to branch on the
// failure mode rather than the HTTP status.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindDependency        ErrorKind = "dependency_failed"
	KindInternal          ErrorKind = "internal"
)

// AppError is the error type surfaced by all services. The wrapped cause is
// kept for logging only and is never serialized to clients.
type AppError struct {
	Code    int       `json:"-"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates a validation error (missing/malformed input)
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: message, Err: err}
}

// NewUnauthorizedError creates an error for unauthenticated callers
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: message}
}

// NewForbiddenError creates an error for callers whose role is insufficient
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: message}
}

// NewNotFoundError creates an error for a missing entity
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: message, Err: err}
}

// NewConflictError creates an error for exclusivity violations
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: message}
}

// NewInvalidTransitionError creates an error for a status precondition failure
func NewInvalidTransitionError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindInvalidTransition, Message: message}
}

// NewDependencyError wraps a failed collaborator call. The original error is
// retained for logging but the client only sees the generic message.
func NewDependencyError(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadGateway, Kind: KindDependency, Message: message, Err: err}
}

// NewInternalServerError creates a generic internal error
func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: message}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}
