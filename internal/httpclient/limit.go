package httpclient

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxResponseBytes caps completion bodies when no limit is configured.
const DefaultMaxResponseBytes int64 = 8 << 20

// ErrResponseTooLarge is matched by every error ReadAllWithLimit returns for
// an oversized body.
var ErrResponseTooLarge = errors.New("response body too large")

type limitError struct {
	limit int64
}

func (e *limitError) Error() string {
	return fmt.Sprintf("%v: exceeded limit of %d bytes", ErrResponseTooLarge, e.limit)
}

func (e *limitError) Is(target error) bool {
	return target == ErrResponseTooLarge
}

// IsResponseTooLarge reports whether err came from an oversized body.
func IsResponseTooLarge(err error) bool {
	return errors.Is(err, ErrResponseTooLarge)
}

// ReadAllWithLimit drains r, failing as soon as more than limit bytes arrive.
// A non-positive limit means DefaultMaxResponseBytes.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxResponseBytes
	}
	// One byte past the limit distinguishes "exactly limit" from "too large".
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	switch {
	case err != nil:
		return nil, err
	case int64(len(data)) > limit:
		return nil, &limitError{limit: limit}
	default:
		return data, nil
	}
}
