// FilePath: internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeUnavailable ErrorType = "store_unavailable"
	ErrorTypeInternal    ErrorType = "internal"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Step      string    `json:"step,omitempty"`
	Details   any       `json:"details,omitempty"`
	Store     string    `json:"-"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	prefix := string(e.Type)
	if e.Step != "" {
		prefix = fmt.Sprintf("%s [%s]", e.Type, e.Step)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", prefix, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap exposes the internal cause to errors.Is / errors.As
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// WithStep records which step of a multi-store operation failed.
func (e *APIError) WithStep(step string) *APIError {
	e.Step = step
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: msg,
		Code:    http.StatusBadRequest,
		err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: msg,
		Code:    http.StatusNotFound,
		err:     err,
	}
}

// NewConflictError creates a new conflict error for duplicate unique keys
func NewConflictError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeConflict,
		Message: msg,
		Code:    http.StatusConflict,
		err:     err,
	}
}

// NewStoreUnavailableError creates an error for a failed call against a backing store.
// The message is kept for logs only; clients see a generic message.
func NewStoreUnavailableError(store, msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeUnavailable,
		Message: msg,
		Code:    http.StatusInternalServerError,
		Store:   store,
		err:     err,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// AsAPIError finds the first APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// FromError converts any error into an APIError, defaulting to internal.
func FromError(err error) *APIError {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr
	}
	return NewInternalError("internal server error", err)
}

// Public returns a copy safe to send to clients. Store and internal failures
// lose their message so that no query text or driver output leaks.
func (e *APIError) Public() *APIError {
	out := &APIError{
		Type:      e.Type,
		Message:   e.Message,
		Code:      e.Code,
		RequestID: e.RequestID,
		Step:      e.Step,
		Details:   e.Details,
	}
	switch e.Type {
	case ErrorTypeUnavailable:
		out.Message = "a backing store is unavailable"
		out.Details = nil
	case ErrorTypeInternal:
		out.Message = "internal server error"
		out.Details = nil
	}
	return out
}

func isType(err error, t ErrorType) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Type == t
	}
	return false
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsConflict checks if an error is a Conflict error
func IsConflict(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsStoreUnavailable checks if an error came from a failing backing store
func IsStoreUnavailable(err error) bool {
	return isType(err, ErrorTypeUnavailable)
}
