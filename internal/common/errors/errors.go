// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeProviderUnavailable   ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderRateLimited   ErrorCode = "PROVIDER_RATE_LIMITED"
	ErrCodeProviderRequestFailed ErrorCode = "PROVIDER_REQUEST_FAILED"
	ErrCodeProviderTimeout       ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderBadOutput     ErrorCode = "PROVIDER_BAD_OUTPUT"

	ErrCodeIntentAnalysisFailed ErrorCode = "INTENT_ANALYSIS_FAILED"

	ErrCodeProductSearchFailed ErrorCode = "PRODUCT_SEARCH_FAILED"
	ErrCodeProductSourceFailed ErrorCode = "PRODUCT_SOURCE_FAILED"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeHistoryReadFailed  ErrorCode = "HISTORY_READ_FAILED"
	ErrCodeHistoryWriteFailed ErrorCode = "HISTORY_WRITE_FAILED"
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
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports malformed job variables.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// NewProviderUnavailableError reports a provider skipped for lack of credentials.
func NewProviderUnavailableError(provider string) *StandardError {
	return newError(ErrCodeProviderUnavailable, "Provider not configured", fmt.Sprintf("provider: %s", provider), false).
		WithMetadata("provider", provider)
}

// NewProviderRateLimitedError reports an HTTP 429 class response.
func NewProviderRateLimitedError(provider, model string) *StandardError {
	return newError(ErrCodeProviderRateLimited, "Provider rate limited", fmt.Sprintf("provider: %s, model: %s", provider, model), true).
		WithMetadata("provider", provider)
}

// NewProviderRequestFailedError reports a transport or non-2xx failure.
func NewProviderRequestFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeProviderRequestFailed, "Provider request failed", fmt.Sprintf("provider: %s, error: %v", provider, err), true).
		WithMetadata("provider", provider)
}

// NewProviderTimeoutError reports a provider call that exceeded its deadline.
func NewProviderTimeoutError(provider string) *StandardError {
	return newError(ErrCodeProviderTimeout, "Provider request timed out", fmt.Sprintf("provider: %s", provider), true).
		WithMetadata("provider", provider)
}

// NewProviderBadOutputError reports a response without a usable JSON object.
func NewProviderBadOutputError(provider, details string) *StandardError {
	return newError(ErrCodeProviderBadOutput, "Provider returned unusable output", details, true).
		WithMetadata("provider", provider)
}

// NewIntentAnalysisFailedError wraps an unexpected orchestrator failure.
func NewIntentAnalysisFailedError(err error) *StandardError {
	return newError(ErrCodeIntentAnalysisFailed, "Intent analysis failed", err.Error(), true)
}

// NewProductSearchFailedError wraps an unexpected aggregator failure.
func NewProductSearchFailedError(err error) *StandardError {
	return newError(ErrCodeProductSearchFailed, "Product search failed", err.Error(), true)
}

// NewProductSourceFailedError reports a single product source failure.
func NewProductSourceFailedError(source string, err error) *StandardError {
	return newError(ErrCodeProductSourceFailed, "Product source failed", fmt.Sprintf("source: %s, error: %v", source, err), true).
		WithMetadata("source", source)
}

// NewCacheUnavailableError reports a cache backend failure.
func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Product cache unavailable", err.Error(), true)
}

// NewHistoryReadFailedError reports a conversation history read failure.
func NewHistoryReadFailedError(err error) *StandardError {
	return newError(ErrCodeHistoryReadFailed, "Conversation history read failed", err.Error(), true)
}

// NewHistoryWriteFailedError reports a conversation history write failure.
func NewHistoryWriteFailedError(err error) *StandardError {
	return newError(ErrCodeHistoryWriteFailed, "Conversation history write failed", err.Error(), true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeHistoryReadFailed,
		ErrCodeHistoryWriteFailed,
		ErrCodeProductSearchFailed,
		ErrCodeIntentAnalysisFailed:
		return 3

	case ErrCodeCacheUnavailable,
		ErrCodeProviderTimeout,
		ErrCodeProviderRequestFailed:
		return 2

	case ErrCodeProviderRateLimited,
		ErrCodeProviderBadOutput,
		ErrCodeProductSourceFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// CodeOf returns the code of a StandardError, or "" for any other error.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROVIDER") || strings.HasPrefix(codeStr, "INTENT"):
		return "AI"
	case strings.HasPrefix(codeStr, "PRODUCT") || strings.HasPrefix(codeStr, "CACHE"):
		return "SHOPPING"
	case strings.HasPrefix(codeStr, "HISTORY"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
