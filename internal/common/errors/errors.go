// Package errors provides standardized error handling for the contact and status services.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"

	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeSubmissionFailed   ErrorCode = "SUBMISSION_FAILED"
	ErrCodeBackendTimeout     ErrorCode = "BACKEND_TIMEOUT"
	ErrCodeBackendRejected    ErrorCode = "BACKEND_REJECTED"

	ErrCodeStatusStoreFailed      ErrorCode = "STATUS_STORE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeGuardUnavailable       ErrorCode = "GUARD_UNAVAILABLE"

	ErrCodeHandlerDisabled ErrorCode = "HANDLER_DISABLED"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputParsingFailedError creates a non-retryable decode error.
func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse request body",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSubmissionInFlightError reports that a submission for the same form is still running.
func NewSubmissionInFlightError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInFlight,
		Message:   "A submission is already in progress",
		Details:   fmt.Sprintf("guardKey: %s", key),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionFailedError wraps a transport failure while posting to the status endpoint.
func NewSubmissionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionFailed,
		Message:   "Status endpoint request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBackendTimeoutError reports that the status endpoint did not answer in time.
func NewBackendTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendTimeout,
		Message:   "Status endpoint timeout",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBackendRejectedError reports a non-2xx answer from the status endpoint.
func NewBackendRejectedError(statusCode int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendRejected,
		Message:   "Status endpoint rejected the request",
		Details:   fmt.Sprintf("status: %d, body: %s", statusCode, body),
		Retryable: statusCode >= 500,
		Metadata:  map[string]interface{}{"statusCode": statusCode},
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusStoreFailedError creates a retryable storage error.
func NewStatusStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStatusStoreFailed,
		Message:   "Status record storage failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewGuardUnavailableError reports that the in-flight guard backend could not be reached.
func NewGuardUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGuardUnavailable,
		Message:   "Submission guard unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewHandlerDisabledError reports a handler switched off by configuration.
func NewHandlerDisabledError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHandlerDisabled,
		Message:   "Handler disabled by configuration",
		Details:   fmt.Sprintf("handler: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError returns err as a StandardError, wrapping unknown errors as internal.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf extracts the error code used for metric labels.
func CodeOf(err error) string {
	if stdErr, ok := err.(*StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}

// HTTPStatus maps an error code to the HTTP status returned to callers.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInputParsingFailed:
		return http.StatusBadRequest
	case ErrCodeSubmissionInFlight:
		return http.StatusConflict
	case ErrCodeSubmissionFailed, ErrCodeBackendRejected:
		return http.StatusBadGateway
	case ErrCodeBackendTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeStatusStoreFailed, ErrCodeGuardUnavailable, ErrCodeHandlerDisabled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeSubmissionInFlight,
		ErrCodeSubmissionFailed,
		ErrCodeBackendTimeout,
		ErrCodeStatusStoreFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeGuardUnavailable:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SUBMISSION") || strings.Contains(codeStr, "BACKEND"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	case strings.Contains(codeStr, "GUARD"):
		return "GUARD"
	default:
		return "OTHER"
	}
}
