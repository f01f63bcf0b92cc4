package errors

import "fmt"

// ErrorCode represents a clipd error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrContentTooLarge ErrorCode = "CONTENT_TOO_LARGE" // 413
	ErrInternal        ErrorCode = "INTERNAL"          // 500
)

// ClipError represents a structured error with code, status, and details.
type ClipError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ClipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ClipError {
	return &ClipError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when an entry cannot be found.
func NewNotFound(id string) *ClipError {
	return &ClipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("entry not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewContentTooLarge creates a 413 error when a payload exceeds the
// configured capture ceiling.
func NewContentTooLarge(max, actual int) *ClipError {
	return &ClipError{
		Code:    ErrContentTooLarge,
		Status:  413,
		Message: fmt.Sprintf("content exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ClipError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ClipError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ClipError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*ClipError); ok {
		return cErr.Code == code
	}
	return false
}
