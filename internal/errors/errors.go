// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrRateLimited       = errors.New("rate limited by market data provider")
	ErrUpstream          = errors.New("market data provider error")
	ErrUnknownAsset      = errors.New("unknown asset")
	ErrMissingCredential = errors.New("missing API credential")
	ErrDataNotFound      = errors.New("data not found")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrSessionClosed     = errors.New("session closed")
)

// UpstreamError represents a non-success response from the market data
// provider. It wraps ErrUpstream so callers can match with errors.Is.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("market data API error: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("market data API error: status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(status int, body string) *UpstreamError {
	return &UpstreamError{StatusCode: status, Body: body}
}

// TransportError represents a network-level failure talking to an upstream
// service, before any HTTP status was received.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure [%s]: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(endpoint string, err error) *TransportError {
	return &TransportError{Endpoint: endpoint, Err: err}
}

// InsightError represents a failure from the AI insight provider. It never
// escapes the insight package; it exists so the degradation path can log
// something structured.
type InsightError struct {
	Operation string
	Err       error
}

func (e *InsightError) Error() string {
	return fmt.Sprintf("insight error [%s]: %v", e.Operation, e.Err)
}

func (e *InsightError) Unwrap() error {
	return e.Err
}

// NewInsightError creates a new InsightError.
func NewInsightError(operation string, err error) *InsightError {
	return &InsightError{Operation: operation, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
