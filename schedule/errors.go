/*
errors.go - Error types for the schedule engine

PURPOSE:
  All failures in this package are rejected inputs: every operation is a
  deterministic computation over immutable values, so there is no transient
  failure mode and nothing is ever retried internally.

ERROR CATEGORY:
  InvalidArgument - malformed input to a pure function (bad replace field,
  start after end, split date outside the schedule, ...). All are
  caller-correctable and reported synchronously.

USAGE:
  Callers classify with errors.Is:

    if errors.Is(err, schedule.ErrInvalidArgument) {
        // translate into a user-facing validation message
    }

SEE ALSO:
  - timerange.go, periodic.go: Producers of these errors
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidArgument is the root of the error taxonomy. Every error
	// produced by this package unwraps to it.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSplitBeforeStart is returned when a split date is at or before the
	// first occurrence; there is nothing to terminate before the anchor.
	ErrSplitBeforeStart = fmt.Errorf("%w: split date must be after the first occurrence", ErrInvalidArgument)

	// ErrSplitPastEnd is returned when no occurrence exists at or after the
	// split date; the schedule already ends before the split point.
	ErrSplitPastEnd = fmt.Errorf("%w: no occurrence at or after split date", ErrInvalidArgument)
)

// InvalidArgumentError carries the offending field for validation failures
// raised while applying a patch or constructing a range.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func invalidArg(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

// IsInvalidArgument reports whether err is a rejected-input error from this
// package. Surrounding layers map these to user-facing validation messages.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
