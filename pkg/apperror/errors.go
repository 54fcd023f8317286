package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int          `json:"code"`
	Message   string       `json:"message"`
	ErrorCode string       `json:"error_code,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target is an AppError with the same status and error code.
// Sentinel identity errors can be matched with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.ErrorCode == t.ErrorCode && e.Message == t.Message
}

// Common errors
var (
	ErrUnauthorized = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden    = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrTokenExpired = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Identity provider error codes. Clients map these to localized messages.
const (
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeEmailAlreadyInUse  = "auth/email-already-in-use"
	CodeUserNotFound       = "auth/user-not-found"
	CodeWrongPassword      = "auth/wrong-password"
	CodeWeakPassword       = "auth/weak-password"
	CodeInvalidEmail       = "auth/invalid-email"
	CodeNetworkRequestFail = "auth/network-request-failed"
)

// Identity errors
var (
	ErrInvalidCredentials  = &AppError{Code: http.StatusUnauthorized, ErrorCode: CodeInvalidCredential, Message: "Invalid email or password"}
	ErrEmailAlreadyInUse   = &AppError{Code: http.StatusConflict, ErrorCode: CodeEmailAlreadyInUse, Message: "Email already registered"}
	ErrUserNotFound        = &AppError{Code: http.StatusNotFound, ErrorCode: CodeUserNotFound, Message: "User not found"}
	ErrWrongPassword       = &AppError{Code: http.StatusUnauthorized, ErrorCode: CodeWrongPassword, Message: "Current password is incorrect"}
	ErrWeakPassword        = &AppError{Code: http.StatusUnprocessableEntity, ErrorCode: CodeWeakPassword, Message: "Password must be at least 6 characters"}
	ErrInvalidEmail        = &AppError{Code: http.StatusUnprocessableEntity, ErrorCode: CodeInvalidEmail, Message: "Email address is not valid"}
	ErrIdentityUnavailable = &AppError{Code: http.StatusServiceUnavailable, ErrorCode: CodeNetworkRequestFail, Message: "Authentication service is unavailable"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewInternalError creates a 500 error that hides the underlying cause
func NewInternalError(message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
