package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies provider failures for retry decisions.
type ErrorKind string

const (
	// ErrTransient covers timeouts, network failures and 5xx responses.
	// Worth at most one retry.
	ErrTransient ErrorKind = "transient"
	// ErrAuth covers invalid or missing API keys. Never retried.
	ErrAuth ErrorKind = "auth"
	// ErrRateLimit covers 429 responses. Never retried within a request.
	ErrRateLimit ErrorKind = "rate_limit"
)

// ProviderError is a typed failure from an LLM backend.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Message  string
	cause    error
}

func (e *ProviderError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s provider %s error: %v", e.Provider, e.Kind, e.cause)
	}
	return fmt.Sprintf("%s provider %s error: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.cause }

// Retryable reports whether one bounded retry is appropriate.
func (e *ProviderError) Retryable() bool { return e.Kind == ErrTransient }

// NewProviderError builds a typed error from an HTTP status.
func NewProviderError(provider string, status int, message string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: classifyStatus(status), Status: status, Message: message}
}

// WrapProviderError types a transport-level failure. Context cancellation and
// deadline expiry count as transient.
func WrapProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrTransient, cause: err}
}

func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusTooManyRequests:
		return ErrRateLimit
	default:
		return ErrTransient
	}
}

// AsProviderError extracts a typed provider error from a chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsCancelled reports whether the failure came from the caller going away
// rather than from the provider.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
