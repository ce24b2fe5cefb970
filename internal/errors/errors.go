package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess        = 0   // Indicates successful execution.
	ExitErrorGeneric   = 1   // Indicates a generic error.
	ExitErrorTimeout   = 2   // Indicates the run exceeded its deadline.
	ExitErrorIntegrity = 3   // Indicates a series integrity failure (gaps, missing index month).
	ExitErrorConfig    = 4   // Indicates a configuration or input validation error.
	ExitErrorNetwork   = 5   // Indicates an upstream request failed.
	ExitErrorParse     = 6   // Indicates an upstream document could not be parsed.
	ExitErrorCanceled  = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// FetchError describes a failed request to an upstream data source. It keeps
// the source name, the URL, and the HTTP status (zero when the request never
// produced a response) alongside the underlying cause.
type FetchError struct {
	// Source is the data source label (e.g., "bls", "pbs").
	Source string
	// URL is the requested address.
	URL string
	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int
	// Transport reports whether the request failed before a response arrived.
	Transport bool
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted message describing the failed request.
func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: request to %s failed: %d %s", e.Source, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Cause != nil:
		return fmt.Sprintf("%s: request to %s failed: %v", e.Source, e.URL, e.Cause)
	default:
		return fmt.Sprintf("%s: request to %s failed", e.Source, e.URL)
	}
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Cause }

// Retryable reports whether repeating the request may succeed: transport
// failures, server errors, and rate limiting.
func (e *FetchError) Retryable() bool {
	if IsContextError(e.Cause) {
		return false
	}
	return e.Transport || e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ParseError reports that an upstream document did not have the expected
// shape. Subject names what was being parsed (a month, a listing page).
type ParseError struct {
	Source  string
	Subject string
	Cause   error
}

// Error returns a formatted message describing the parse failure.
func (e *ParseError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: parse failed: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("%s: parse %s: %v", e.Source, e.Subject, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Cause }

// IntegrityError reports a series that violates its invariants, such as
// non-adjacent months or points outside the requested range.
type IntegrityError struct {
	Message string
}

// Error returns the integrity failure description.
func (e IntegrityError) Error() string { return "integrity error: " + e.Message }

// NewIntegrityError creates an IntegrityError with a formatted message.
func NewIntegrityError(format string, a ...any) error {
	return IntegrityError{Message: fmt.Sprintf(format, a...)}
}

// MissingMonthError reports a lookup of a month that is not in the series.
type MissingMonthError struct {
	// Month is the requested month in YYYY-MM form.
	Month string
}

// Error returns a formatted message naming the missing month.
func (e MissingMonthError) Error() string {
	return fmt.Sprintf("month %s not present in series", e.Month)
}

// TimeoutError represents a run that exceeded its deadline. It captures the
// operation name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
	// Err is the error the operation failed with, if any.
	Err error
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// Unwrap returns the underlying error.
func (e TimeoutError) Unwrap() error { return e.Err }

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code. Context errors take
// precedence over the error's own type, since a cancelled fetch surfaces as
// a FetchError wrapping context.Canceled.
//
// Parameters:
//   - err: The error to classify; nil maps to ExitSuccess.
//
// Returns:
//   - int: The exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		timeoutErr   TimeoutError
		configErr    ConfigError
		validErr     ValidationError
		fetchErr     *FetchError
		parseErr     *ParseError
		integrityErr IntegrityError
		missingErr   MissingMonthError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &configErr), errors.As(err, &validErr):
		return ExitErrorConfig
	case errors.As(err, &integrityErr), errors.As(err, &missingErr):
		return ExitErrorIntegrity
	case errors.As(err, &parseErr):
		return ExitErrorParse
	case errors.As(err, &fetchErr):
		return ExitErrorNetwork
	default:
		return ExitErrorGeneric
	}
}
