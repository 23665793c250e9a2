package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks malformed, corrupt, or unsupported content.
	// Never retried.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized marks missing or rejected credentials. Never retried;
	// remediation is re-authenticating the provider.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited marks an upstream 429. Retried with backoff.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnavailable marks an upstream outage (5xx, connection refused).
	// Retried with backoff.
	ErrUnavailable = errors.New("service unavailable")
	// ErrTimeout marks an exhausted deadline. Terminal once the caller's
	// retry budget is spent.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures with no more specific classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error class should be retried with backoff.
// Only rate limiting and upstream outages qualify; bad input, authorization
// failures, and timeouts surface immediately.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrUnavailable):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
