package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorType is the category of a failed fetch attempt
type ErrorType string

const (
	ErrorTypeNetwork   ErrorType = "network"    // connection refused, DNS, reset
	ErrorTypeTimeout   ErrorType = "timeout"    // request exceeded its deadline
	ErrorTypeRateLimit ErrorType = "rate_limit" // HTTP 429 or 503
	ErrorTypeServer    ErrorType = "server"     // other 5xx
	ErrorTypeClient    ErrorType = "client"     // 4xx other than 429
	ErrorTypeParse     ErrorType = "parse"      // body received but unusable
	ErrorTypeUnknown   ErrorType = "unknown"
)

// retryable lists the categories worth another attempt
var retryable = map[ErrorType]bool{
	ErrorTypeNetwork:   true,
	ErrorTypeTimeout:   true,
	ErrorTypeRateLimit: true,
}

// FetchError describes why a request to an upstream source failed
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	URL        string
	Message    string
	Cause      error
}

func newFetchError(typ ErrorType, status int, message string, cause error) *FetchError {
	return &FetchError{
		Type:       typ,
		Retryable:  retryable[typ],
		StatusCode: status,
		Message:    message,
		Cause:      cause,
	}
}

// Error implements the error interface
func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteString(" error")
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " for %s", e.URL)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// WithURL records the request URL on e and returns it
func (e *FetchError) WithURL(url string) *FetchError {
	e.URL = url
	return e
}

func NewNetworkError(cause error) *FetchError {
	return newFetchError(ErrorTypeNetwork, 0, "network request failed", cause)
}

func NewTimeoutError(cause error) *FetchError {
	return newFetchError(ErrorTypeTimeout, 0, "request timed out", cause)
}

func NewRateLimitError(statusCode int) *FetchError {
	return newFetchError(ErrorTypeRateLimit, statusCode, "rate limit exceeded", nil)
}

// NewParseError reports a response body that could not be turned into data
func NewParseError(message string, cause error) *FetchError {
	return newFetchError(ErrorTypeParse, 0, message, cause)
}

// ClassifyHTTPError maps a non-200 status to a FetchError. Only 429 and 503
// are retryable; every other status is terminal.
func ClassifyHTTPError(statusCode int) *FetchError {
	text := http.StatusText(statusCode)
	if text == "" {
		text = "unexpected status"
	}

	switch {
	case statusCode == http.StatusTooManyRequests, statusCode == http.StatusServiceUnavailable:
		return NewRateLimitError(statusCode)
	case statusCode >= 500:
		return newFetchError(ErrorTypeServer, statusCode, text, nil)
	case statusCode >= 400:
		return newFetchError(ErrorTypeClient, statusCode, text, nil)
	default:
		return newFetchError(ErrorTypeUnknown, statusCode, text, nil)
	}
}

// ClassifyTransportError maps an error raised before any status was received.
// Context cancellation is returned unchanged and is never retried.
func ClassifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}

// IsRetryable reports whether err is a FetchError marked retryable
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable
}
