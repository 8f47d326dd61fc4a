package duckdice

import (
	"errors"
	"fmt"
)

// TransientError wraps failures that are worth retrying: network errors,
// 5xx responses and rate-limit rejections. Mirror failover has already been
// exhausted by the time the caller sees one.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient api error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// BusinessError is an authoritative 4xx rejection from the server, e.g.
// a bad API key or a server-side insufficient balance. Never retried.
type BusinessError struct {
	Status  int
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
