package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "solvecheck/internal/errors"
)

// mapHTTPError converts a non-2xx response into a transient or permanent error.
func mapHTTPError(status int, body []byte, headers http.Header) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	baseErr := fmt.Errorf("status %d: %s", status, msg)
	return apperrors.ClassifyHTTPStatus(status, baseErr, parseRetryAfter(headers))
}

// wrapRequestError classifies transport failures. Cancellation passes through
// untouched so callers can tell it apart from upstream trouble.
func wrapRequestError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.NewTransientError(err, "Could not reach the LLM provider. Please check your network connection.")
}

func parseRetryAfter(headers http.Header) int {
	if headers == nil {
		return 0
	}
	raw := strings.TrimSpace(headers.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
