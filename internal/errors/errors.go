package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"github.com/zhuiying-client/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryTransport represents connection level failures
	CategoryTransport ErrorCategory = "transport"
	// CategoryTimeout represents requests that ran out of time
	CategoryTimeout ErrorCategory = "timeout"
	// CategoryHTTPStatus represents non-2xx responses
	CategoryHTTPStatus ErrorCategory = "http_status"
	// CategoryAPI represents envelopes with success=false
	CategoryAPI ErrorCategory = "api"
	// CategoryUnauthorized represents a missing or expired session
	CategoryUnauthorized ErrorCategory = "unauthorized"
	// CategoryDecode represents malformed response bodies
	CategoryDecode ErrorCategory = "decode"
	// CategoryValidation represents input rejected before any request
	CategoryValidation ErrorCategory = "validation"
	// CategoryInsufficientCoins represents a failed local coin spend
	CategoryInsufficientCoins ErrorCategory = "insufficient_coins"
	// CategoryAdUnavailable represents an ad that was not shown or not finished
	CategoryAdUnavailable ErrorCategory = "ad_unavailable"
	// CategoryCircuitOpen represents requests rejected by the circuit breaker
	CategoryCircuitOpen ErrorCategory = "circuit_open"
	// CategoryStorage represents failures of the local key-value store
	CategoryStorage ErrorCategory = "storage"
)

// Messages shown to the user for transport level failures
const (
	MessageTimeout       = "请求超时，请检查网络连接"
	MessageConnection    = "网络连接失败，请检查网络设置"
	MessageRequestFailed = "网络请求失败"
	MessageStorage       = "本地数据保存失败"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// Transport errors

// NewTransportError wraps a failure to reach the backend
func NewTransportError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category: CategoryTransport,
		Code:     "TRANSPORT_ERROR",
		Message:  MessageConnection,
		Cause:    cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewTimeoutError wraps a request that exceeded its deadline
func NewTimeoutError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryTimeout,
		StatusCode: http.StatusGatewayTimeout,
		Code:       "TIMEOUT",
		Message:    MessageTimeout,
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewHTTPStatusError creates an error for a non-2xx response
func NewHTTPStatusError(statusCode int) *CategorizedError {
	category := CategoryHTTPStatus
	if statusCode == http.StatusUnauthorized {
		category = CategoryUnauthorized
	}
	return &CategorizedError{
		Category:   category,
		StatusCode: statusCode,
		Code:       "HTTP_ERROR",
		Message:    fmt.Sprintf("HTTP Error: %d", statusCode),
	}
}

// NewAPIError creates an error from an envelope with success=false
func NewAPIError(code int, message string) *CategorizedError {
	if message == "" {
		message = MessageRequestFailed
	}
	category := CategoryAPI
	if code == http.StatusUnauthorized {
		category = CategoryUnauthorized
	}
	return &CategorizedError{
		Category:   category,
		StatusCode: http.StatusOK,
		Code:       "API_ERROR",
		Message:    message,
		Cause:      &types.ServiceError{Code: code, Message: message},
		Details: map[string]interface{}{
			"code": code,
		},
	}
}

// NewDecodeError wraps a response that could not be parsed
func NewDecodeError(cause error) *CategorizedError {
	return &CategorizedError{
		Category: CategoryDecode,
		Code:     "DECODE_ERROR",
		Message:  MessageRequestFailed,
		Cause:    cause,
	}
}

// NewCircuitOpenError is returned while the backend is considered down
func NewCircuitOpenError(cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryCircuitOpen,
		StatusCode: http.StatusServiceUnavailable,
		Code:       "CIRCUIT_OPEN",
		Message:    MessageRequestFailed,
		Cause:      cause,
	}
}

// Local errors

// NewValidationError creates an error for input rejected locally
func NewValidationError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_INPUT",
		Message:    message,
	}
}

// NewInsufficientCoinsError is returned when a coin spend is refused
func NewInsufficientCoinsError(message string, required, balance int) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryInsufficientCoins,
		StatusCode: http.StatusPaymentRequired,
		Code:       "INSUFFICIENT_COINS",
		Message:    message,
		Details: map[string]interface{}{
			"required": required,
			"balance":  balance,
		},
	}
}

// NewStorageError wraps a failed read or write of local state
func NewStorageError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category: CategoryStorage,
		Code:     "STORAGE_ERROR",
		Message:  MessageStorage,
		Cause:    cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewAdUnavailableError is returned when a rewarded ad did not complete
func NewAdUnavailableError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category: CategoryAdUnavailable,
		Code:     "AD_UNAVAILABLE",
		Message:  message,
		Cause:    cause,
	}
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	var svcErr *types.ServiceError
	if stderrors.As(err, &svcErr) {
		return NewAPIError(svcErr.Code, svcErr.Message)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request", err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewTimeoutError("request", err)
		}
		return NewTransportError("request", err)
	}

	return &CategorizedError{
		Category: CategoryTransport,
		Code:     "UNKNOWN",
		Message:  MessageRequestFailed,
		Cause:    err,
	}
}

// UserMessage returns the best-effort human readable message for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr.Message
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return MessageTimeout
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return MessageTimeout
		}
		return MessageConnection
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageRequestFailed
}

// IsRetryable determines if an error is retryable
func IsRetryable(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return false
	}
	catErr := Categorize(err)

	switch catErr.Category {
	case CategoryTransport, CategoryTimeout:
		return true
	case CategoryHTTPStatus:
		return catErr.StatusCode >= 500 || catErr.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// IsUnauthorized reports whether err means the session is missing or expired
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	return Categorize(err).Category == CategoryUnauthorized
}

// IsCategory reports whether err belongs to category
func IsCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}
	return Categorize(err).Category == category
}
