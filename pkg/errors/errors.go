// Package errors provides the error taxonomy for gitstat.
//
// Two layers live here:
//   - Sentinel errors and [HTTPError] describe what went wrong on the wire
//     (network failure, non-2xx status, cancellation, malformed body).
//   - [Error] carries a machine-readable [Code] plus a user-facing message
//     for the CLI.
//
// # Propagation
//
// Fetch failures are returned unchanged up the stack and matched with
// errors.Is / errors.As. Cancellation ([ErrAborted]) is expected when a
// search is superseded and is never shown to the user. [ErrReadmeUnavailable]
// is expected for most accounts and degrades to a placeholder.
//
// # Usage
//
//	if errors.IsNotFound(err) {
//	    // render the not-found view
//	}
//	if errors.IsRetryable(err) {
//	    // offer a manual retry
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeReadmeUnavailable Code = "README_UNAVAILABLE"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeHTTP        Code = "HTTP_ERROR"
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeAborted     Code = "ABORTED"
	ErrCodeMalformed   Code = "MALFORMED_RESPONSE"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

var (
	// ErrNetwork is returned for transport-level failures (DNS, connection
	// reset, client timeout).
	ErrNetwork = errors.New("network error")

	// ErrAborted is returned when a request's context is cancelled before
	// the response arrives.
	ErrAborted = errors.New("request aborted")

	// ErrNotFound is matched by a 404 [HTTPError].
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is matched by a 429 [HTTPError].
	ErrRateLimited = errors.New("rate limited")

	// ErrReadmeUnavailable is returned when a profile README cannot be loaded.
	ErrReadmeUnavailable = errors.New("readme unavailable")

	// ErrMalformedResponse is returned when a response body cannot be decoded
	// or fails validation.
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError reports a response whose status is outside the 2xx range.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("http error: status %d", e.Status)
	}
	return fmt.Sprintf("http error: status %d: %s", e.Status, e.URL)
}

// Is lets errors.Is match [ErrNotFound] and [ErrRateLimited] by status.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}

// Retryable reports whether a manual retry can succeed without changing the
// request: server errors and rate limiting.
func (e *HTTPError) Retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// IsRetryable reports whether err is a network failure or a retryable
// [HTTPError].
func IsRetryable(err error) bool {
	if err == nil || IsAborted(err) {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Retryable()
	}
	return false
}

// IsNotFound reports whether err matches [ErrNotFound].
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAborted reports whether err stems from cancellation.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled)
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Classify maps err to a [Code]. Explicit *Error codes win; otherwise the
// sentinel taxonomy is consulted. Returns "" for nil.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	if code := GetCode(err); code != "" {
		return code
	}
	var he *HTTPError
	switch {
	case IsAborted(err):
		return ErrCodeAborted
	case errors.Is(err, ErrReadmeUnavailable):
		return ErrCodeReadmeUnavailable
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrRateLimited):
		return ErrCodeRateLimited
	case errors.Is(err, ErrMalformedResponse):
		return ErrCodeMalformed
	case errors.Is(err, ErrNetwork):
		return ErrCodeNetwork
	case errors.As(err, &he):
		return ErrCodeHTTP
	}
	return ErrCodeInternal
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// Known wire failures get a fixed sentence; anything else is returned as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	switch Classify(err) {
	case ErrCodeNotFound:
		return "GitHub user not found."
	case ErrCodeRateLimited:
		return "GitHub rate limit exceeded. Please try again later."
	case ErrCodeNetwork:
		return "Could not reach GitHub. Check your connection and try again."
	case ErrCodeMalformed:
		return "GitHub returned an unexpected response."
	case ErrCodeReadmeUnavailable:
		return "No README available."
	}
	return err.Error()
}
