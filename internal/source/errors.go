package source

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes adapter failures into a small taxonomy. The
// orchestrator never aborts on any of these; it records them and moves on.
type ErrorCategory string

const (
	// CategoryUnavailable indicates the source could not be reached or
	// answered with a server-side failure.
	CategoryUnavailable ErrorCategory = "unavailable"

	// CategoryBlocked indicates the source refused the request, e.g. a 403
	// or a rate-limit response.
	CategoryBlocked ErrorCategory = "blocked"

	// CategoryTimeout indicates the source took too long to answer.
	CategoryTimeout ErrorCategory = "timeout"

	// CategoryInternal indicates an unexpected adapter-side failure.
	CategoryInternal ErrorCategory = "internal"
)

// SourceError wraps an adapter failure with its normalized category.
type SourceError struct {
	Category   ErrorCategory
	Source     string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *SourceError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("source %s [%s]: %s: %v", e.Source, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("source %s [%s]: %s", e.Source, e.Category, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Underlying
}

// NewSourceError creates a normalized adapter error. Timeouts and outages are
// marked retryable; blocks are not, since retrying a block only digs deeper.
func NewSourceError(category ErrorCategory, sourceName, message string, underlying error) *SourceError {
	return &SourceError{
		Category:   category,
		Source:     sourceName,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == CategoryTimeout || category == CategoryUnavailable,
	}
}

// IsRetryable reports whether an error is worth retrying.
func IsRetryable(err error) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// Categorize extracts the error category, defaulting unknown errors to
// internal so generic failures are treated like any other source outage.
func Categorize(err error) ErrorCategory {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Category
	}
	return CategoryInternal
}
