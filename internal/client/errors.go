package client

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by ConfigError.
var (
	ErrMissingTarget    = errors.New("request needs a path or an absolute URL")
	ErrAmbiguousTarget  = errors.New("request cannot carry both a path and an absolute URL")
	ErrFieldsRequireGET = errors.New("query fields are only valid for GET requests")
	ErrMissingToken     = errors.New("bearer token is required")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// bodyPreviewLimit caps how much of a response body is copied into error messages.
const bodyPreviewLimit = 200

// ConfigError reports a request or client that was built incorrectly.
// It is never retried and is raised before any network call.
type ConfigError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// HTTPError is a terminal HTTP failure: either a status outside the retry set,
// or a retryable status after the attempt budget ran out.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Reason     string
	Body       string
	Attempts   int
	// Retryable is set when the status was in the retry set, meaning the
	// attempt budget ran out.
	Retryable bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP request failed: %s %s: status=%d (%s), attempts=%d, body=%s",
		e.Method, e.URL, e.StatusCode, e.Reason, e.Attempts, preview(e.Body))
}

// Exhausted reports whether the error was produced by running out of attempts
// rather than by a non-retryable status.
func (e *HTTPError) Exhausted() bool {
	return e.Retryable
}

// IsNotFound checks if the error indicates a not found response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized checks if the error indicates an authentication failure.
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// DecodeError reports a successful response whose body could not be decoded,
// or a page envelope missing the expected structure.
type DecodeError struct {
	URL     string
	Preview string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON response: url=%s, error=%v, preview=%s", e.URL, e.Err, e.Preview)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure that produced no HTTP response at all
// (connection refused, TLS handshake, timeout).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP request to %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func configError(op string, err error, detail string) error {
	return &ConfigError{Op: op, Err: err, Detail: detail}
}

func preview(body string) string {
	if len(body) > bodyPreviewLimit {
		return body[:bodyPreviewLimit] + "..."
	}
	return body
}
