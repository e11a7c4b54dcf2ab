package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("report server unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("report server request timed out")

	// ErrUnauthorized indicates the bearer token was missing, expired or rejected.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound indicates the addressed report does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidResponse indicates the response body could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from report server")
)

// StatusError is returned for non-2xx responses not covered by a sentinel.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Message)
}

// IsAuthError reports whether err means the session is no longer valid.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func errorCode(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidResponse):
		return "INVALID_RESPONSE"
	case errors.As(err, &se):
		return fmt.Sprintf("HTTP_%d", se.Code)
	default:
		return "UNKNOWN"
	}
}
