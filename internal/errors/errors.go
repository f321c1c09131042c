package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Validation errors
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Sentinel errors for the failure taxonomy. Every error returned by the data
// service wraps exactly one of them.
var (
	ErrNotFound         = stderrors.New("resource not found")
	ErrValidationFailed = stderrors.New("validation failed")
	ErrUnauthorized     = stderrors.New("authentication required")
	ErrTransient        = stderrors.New("service temporarily unavailable")
)

// Kind is the taxonomy bucket of an error.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindValidation   Kind = "ValidationFailed"
	KindUnauthorized Kind = "Unauthorized"
	KindTransient    Kind = "Transient"
	KindUnknown      Kind = "Unknown"
)

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrNotFound):
		return KindNotFound
	case stderrors.Is(err, ErrValidationFailed):
		return KindValidation
	case stderrors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case stderrors.Is(err, ErrTransient):
		return KindTransient
	default:
		return KindUnknown
	}
}

// Retryable reports whether a failed read may succeed if repeated.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindValidation, KindUnauthorized:
		return false
	default:
		return true
	}
}

// NotFoundf returns an error wrapping ErrNotFound for the given entity and id.
func NotFoundf(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// Transient wraps a backend failure.
func Transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
}

// FieldError describes a problem with a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field failures and unwraps to ErrValidationFailed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrValidationFailed, e.Fields[0].Field, e.Fields[0].Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Respond maps a taxonomy error onto an HTTP response.
func Respond(c *gin.Context, err error) {
	switch KindOf(err) {
	case KindNotFound:
		NotFound(c, err.Error())
	case KindValidation:
		var verr *ValidationError
		if stderrors.As(err, &verr) {
			RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeValidationFailed, ErrValidationFailed.Error(), verr.Fields))
			return
		}
		RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeValidationFailed, err.Error()))
	case KindUnauthorized:
		Unauthorized(c, "")
	case KindTransient:
		ServiceUnavailable(c, "")
	default:
		InternalError(c, "")
	}
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}
