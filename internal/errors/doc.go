// Package apperrors defines structured application error types, allowing for a
// clear distinction between error classes (configuration, network, parsing,
// series integrity) and for carrying the underlying cause. Each class maps to
// its own process exit code through ExitCodeFor.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Types that carry a cause implement Unwrap() to support errors.Is() and errors.As().
package apperrors
