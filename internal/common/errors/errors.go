// Package errors provides standardized error handling for the lookup API.
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
	ErrCodeInvalidSearchCriteria ErrorCode = "INVALID_SEARCH_CRITERIA"

	ErrCodeVendorCallFailed ErrorCode = "VENDOR_CALL_FAILED"
	ErrCodeVendorTimeout    ErrorCode = "VENDOR_TIMEOUT"
	ErrCodeVendorAuthFailed ErrorCode = "VENDOR_AUTH_FAILED"

	ErrCodeCacheReadFailed  ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed ErrorCode = "CACHE_WRITE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeEnrichmentFailed   ErrorCode = "ENRICHMENT_FAILED"
	ErrCodeEnrichmentTimeout  ErrorCode = "ENRICHMENT_TIMEOUT"
	ErrCodeInsightUnavailable ErrorCode = "INSIGHT_UNAVAILABLE"

	ErrCodeHistoryWriteFailed ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeIndexNotFound      ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeTokenInvalid         ErrorCode = "TOKEN_INVALID"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeResetTokenExpired    ErrorCode = "RESET_TOKEN_EXPIRED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidSearchCriteriaError creates a non-retryable request validation error.
func NewInvalidSearchCriteriaError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSearchCriteria,
		Message:   "Search criteria failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVendorCallFailedError creates a retryable vendor API error.
func NewVendorCallFailedError(vendor string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVendorCallFailed,
		Message:   fmt.Sprintf("Vendor '%s' call failed", vendor),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewVendorTimeoutError creates a retryable vendor timeout error.
func NewVendorTimeoutError(vendor string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVendorTimeout,
		Message:   fmt.Sprintf("Vendor '%s' timed out", vendor),
		Details:   "call exceeded configured deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewVendorAuthFailedError creates a non-retryable vendor credential error.
func NewVendorAuthFailedError(vendor string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVendorAuthFailed,
		Message:   fmt.Sprintf("Vendor '%s' authentication failed", vendor),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheReadFailedError creates a soft cache error; callers fall through to
// a live vendor call.
func NewCacheReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheReadFailed,
		Message:   "Cache lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheWriteFailedError creates a soft cache error; the search result is
// still returned.
func NewCacheWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheWriteFailed,
		Message:   "Cache save failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnrichmentFailedError creates an error for a secondary lookup; the caller
// renders a placeholder row instead of failing the search.
func NewEnrichmentFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentFailed,
		Message:   fmt.Sprintf("Enrichment source '%s' failed", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsightUnavailableError creates a non-retryable AI insight error.
func NewInsightUnavailableError(category string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsightUnavailable,
		Message:   "AI insight generation unavailable",
		Details:   fmt.Sprintf("category: %s, error: %s", category, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryWriteFailedError creates a soft history persistence error.
func NewHistoryWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryWriteFailed,
		Message:   "Search history write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a non-retryable credential error.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenInvalidError creates a non-retryable bearer token error.
func NewTokenInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenInvalid,
		Message:   "Bearer token invalid or expired",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable mail delivery error.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Integration
// ==========================

// HTTPStatus maps internal error codes to response status codes.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidSearchCriteria:
		return http.StatusBadRequest
	case ErrCodeAuthenticationFailed, ErrCodeTokenInvalid, ErrCodeResetTokenExpired:
		return http.StatusUnauthorized
	case ErrCodeUserNotFound, ErrCodeIndexNotFound, "RESOURCE_NOT_FOUND":
		return http.StatusNotFound
	case ErrCodeVendorTimeout, ErrCodeQueryTimeout, ErrCodeEnrichmentTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeVendorCallFailed, ErrCodeVendorAuthFailed, ErrCodeEnrichmentFailed,
		ErrCodeInsightUnavailable, "EXTERNAL_SERVICE_ERROR":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryable reports whether an error carries a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VENDOR"):
		return "VENDOR"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ENRICHMENT") || strings.Contains(codeStr, "INSIGHT"):
		return "ENRICHMENT"
	case strings.Contains(codeStr, "AUTH") || strings.Contains(codeStr, "TOKEN") || strings.Contains(codeStr, "USER"):
		return "AUTH"
	case strings.Contains(codeStr, "HISTORY") || strings.Contains(codeStr, "INDEX"):
		return "HISTORY"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
