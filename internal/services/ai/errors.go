package ai

import (
	"fmt"
	"strings"
)

// ErrorKind classifies generation failures so callers can pick the right
// user-facing message and HTTP status
type ErrorKind int

const (
	// KindConfig means a missing credential or failed client setup; never retried
	KindConfig ErrorKind = iota
	// KindRateLimited means the remote signaled quota exhaustion or 429
	KindRateLimited
	// KindTimeout means the request lost the race against its deadline
	KindTimeout
	// KindModelUnavailable means 404 with the fallback chain exhausted
	KindModelUnavailable
	// KindGeneric covers everything else
	KindGeneric
)

// Error is the only error type the generation client returns. Exactly one
// kind applies to each failure.
type Error struct {
	Kind    ErrorKind
	Status  int
	Model   string
	Message string
}

func (e *Error) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s (model %s)", e.Message, e.Model)
	}
	return e.Message
}

// KindOf extracts the error kind, defaulting to KindGeneric for foreign errors
func KindOf(err error) ErrorKind {
	if genErr, ok := err.(*Error); ok {
		return genErr.Kind
	}
	return KindGeneric
}

// httpError carries the remote status code alongside the error body so the
// caller can classify retryable failures
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string {
	return e.message
}

// statusOf returns the HTTP status attached to an error, or 0
func statusOf(err error) int {
	if httpErr, ok := err.(*httpError); ok {
		return httpErr.status
	}
	return 0
}

// isRateLimitSignal matches the remote's rate-limit indicators: status 429,
// a "quota" substring, or "rate limit" in any casing
func isRateLimitSignal(status int, message string) bool {
	if status == 429 {
		return true
	}
	if strings.Contains(message, "quota") {
		return true
	}
	return strings.Contains(strings.ToLower(message), "rate limit")
}
