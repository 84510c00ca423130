/*
errors.go - Centralized error types for the procurement engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch with errors.Is / errors.As; stores and the API layer
  wrap these with additional context.

ERROR CATEGORIES:
  1. Validation errors - malformed or missing required input; returned
     to the immediate caller and never logged as a decision
  2. Not-found errors  - a site with no rules configured; a normal,
     expected outcome, not exceptional
  3. Storage errors    - rule-store or ledger I/O failures; fatal to
     the enclosing call and never silently swallowed

SEE ALSO:
  - rules.go, filter.go, order.go: Produce these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package procure

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSiteNotFound is returned when a site has no rules configured.
	// This is an expected outcome, surfaced as data rather than a crash.
	ErrSiteNotFound = errors.New("no rules found for site")

	// ErrInvalidInput is the root of all validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage is the root of all rule-store and ledger I/O failures.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a malformed or missing required input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotFoundError reports a site with no configured rules.
type NotFoundError struct {
	SiteID SiteID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no rules found for %q; set rules first", e.SiteID)
}

func (e *NotFoundError) Unwrap() error { return ErrSiteNotFound }

// StorageError reports a failed rule-store or ledger operation.
// A decision whose audit entry failed to persist must not be reported
// as successful, so these propagate up unchanged.
type StorageError struct {
	Op  string // "append audit", "save rules", "record order", ...
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates missing site rules.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSiteNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
