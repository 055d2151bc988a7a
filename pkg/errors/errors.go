package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an error for the error boundary.
type ErrorType string

const (
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION"
	ErrorTypeAuthorization  ErrorType = "AUTHORIZATION"
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeRateLimit      ErrorType = "RATE_LIMIT"
	ErrorTypeUpstream       ErrorType = "UPSTREAM"
	ErrorTypeInternal       ErrorType = "INTERNAL"
)

// Error codes surfaced to clients in the "code" field.
const (
	CodeFileNotFound  = "FILE_NOT_FOUND"
	CodeAccessDenied  = "ACCESS_DENIED"
	CodeInsufficient  = "INSUFFICIENT_STOCK"
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeInvalidToken  = "INVALID_TOKEN"
	CodeMissingFields = "MISSING_FIELDS"
	CodeRateLimited   = "RATE_LIMITED"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

func newError(t ErrorType, status int, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		HTTPStatus: status,
		StackTrace: captureStackTrace(),
	}
}

// NewAuthenticationError is returned when no usable credential is present.
func NewAuthenticationError(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return newError(ErrorTypeAuthentication, http.StatusUnauthorized, message)
}

// NewAuthorizationError is returned when the caller is authenticated but does not own the resource.
func NewAuthorizationError(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	return newError(ErrorTypeAuthorization, http.StatusForbidden, message)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewConflictError reports a state conflict such as insufficient stock.
// It is served as 400.
func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, http.StatusBadRequest, message)
}

// NewRateLimitError is returned when a caller exceeds its request budget.
func NewRateLimitError(message string) *AppError {
	return newError(ErrorTypeRateLimit, http.StatusTooManyRequests, message).WithCode(CodeRateLimited)
}

// NewUpstreamError wraps a collaborator failure (store, object store, identity provider, bus).
func NewUpstreamError(service string, err error) *AppError {
	return newError(ErrorTypeUpstream, http.StatusInternalServerError,
		fmt.Sprintf("upstream service '%s' failed", service)).WithCause(err)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsNotFound(err error) bool       { return IsType(err, ErrorTypeNotFound) }
func IsValidation(err error) bool     { return IsType(err, ErrorTypeValidation) }
func IsAuthentication(err error) bool { return IsType(err, ErrorTypeAuthentication) }
func IsAuthorization(err error) bool  { return IsType(err, ErrorTypeAuthorization) }
func IsConflict(err error) bool       { return IsType(err, ErrorTypeConflict) }
func IsUpstream(err error) bool       { return IsType(err, ErrorTypeUpstream) }
func IsRateLimit(err error) bool      { return IsType(err, ErrorTypeRateLimit) }

// StatusOf returns the HTTP status the error boundary will use for err.
func StatusOf(err error) int {
	if appErr := GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}
