package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Class tells a caller whether an upstream failure may clear up by itself.
// The pipeline never retries; the class only shapes what the user is told.
type Class int

const (
	ClassPermanent Class = iota
	ClassTransient
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// TransientError is an upstream failure that may succeed later: rate limits,
// 5xx responses, network blips.
type TransientError struct {
	Err        error
	StatusCode int
	RetryAfter int // seconds, from the Retry-After header
	Message    string
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) userMessage() string { return e.Message }

// PermanentError is an upstream failure that repeats until configuration
// changes: bad credentials, malformed requests, oversized responses.
type PermanentError struct {
	Err        error
	StatusCode int
	Message    string
}

func (e *PermanentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

func (e *PermanentError) userMessage() string { return e.Message }

// NewTransientError wraps err with the message shown to the user.
func NewTransientError(err error, message string) *TransientError {
	return &TransientError{Err: err, Message: message}
}

// NewPermanentError wraps err with the message shown to the user.
func NewPermanentError(err error, message string) *PermanentError {
	return &PermanentError{Err: err, Message: message}
}

const authFailedMessage = "Authentication failed. Please check your API key configuration."

// ClassifyHTTPStatus wraps err according to the status an upstream API returned.
func ClassifyHTTPStatus(statusCode int, err error, retryAfter int) error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &TransientError{Err: err, StatusCode: statusCode, RetryAfter: retryAfter,
			Message: "API rate limit reached. Please wait before starting another run."}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &TransientError{Err: err, StatusCode: statusCode, RetryAfter: retryAfter,
			Message: fmt.Sprintf("Upstream returned %d. The service is temporarily unavailable.", statusCode)}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &PermanentError{Err: err, StatusCode: statusCode, Message: authFailedMessage}
	default:
		return &PermanentError{Err: err, StatusCode: statusCode}
	}
}

// Classify reports the class of err. Typed errors decide first, then
// network conditions; anything unrecognised is permanent.
func Classify(err error) Class {
	if err == nil {
		return ClassPermanent
	}
	var transient *TransientError
	if errors.As(err, &transient) {
		return ClassTransient
	}
	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return ClassPermanent
	}
	if isNetworkFailure(err) {
		return ClassTransient
	}
	return ClassPermanent
}

// IsTransient reports whether err may clear up on its own.
func IsTransient(err error) bool {
	return err != nil && Classify(err) == ClassTransient
}

// IsPermanent reports whether err is known to recur: a PermanentError, or an
// untyped error whose text names an auth or request problem.
func IsPermanent(err error) bool {
	if err == nil || IsTransient(err) {
		return false
	}
	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return true
	}
	return containsAny(strings.ToLower(err.Error()), "unauthorized", "forbidden", "bad request", "invalid api key")
}

// FormatForUser turns an upstream failure into an actionable sentence.
func FormatForUser(err error) string {
	if err == nil {
		return ""
	}
	var withMessage interface{ userMessage() string }
	if errors.As(err, &withMessage) {
		if msg := withMessage.userMessage(); msg != "" {
			return msg
		}
	}

	text := err.Error()
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "connection refused"):
		return "LLM endpoint is not reachable. Please check the base URL."
	case containsAny(lower, "timeout", "deadline exceeded"):
		return "Request timed out. Try again or increase the timeout."
	case containsAny(lower, "unauthorized", "401"):
		return authFailedMessage
	}
	return text
}

func isNetworkFailure(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EPIPE,
		syscall.ETIMEDOUT, syscall.ENETUNREACH, syscall.EHOSTUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return containsAny(strings.ToLower(err.Error()), "connection refused", "connection reset", "broken pipe", "timeout")
}

func containsAny(s string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
