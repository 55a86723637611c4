// Package errs holds the sentinel errors shared by the waitlist, lottery and
// notification layers. Callers match them with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrCapacityExceeded        = errors.New("event is at capacity")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrInsufficientEntrants    = errors.New("not enough waiting entrants")
	ErrAlreadyDrew             = errors.New("lottery already drawn for this event")
	ErrNoWaitingEntrants       = errors.New("no waiting entrants left")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStoreFailure            = errors.New("store failure")
)

// Store wraps a backend error so that it matches both ErrStoreFailure and the
// underlying cause.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

// Invalid returns an ErrInvalidArgument carrying a reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsDomain reports whether err is one of the sentinels above other than
// ErrStoreFailure. Domain errors pass through transaction boundaries unchanged.
func IsDomain(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInsufficientEntrants),
		errors.Is(err, ErrAlreadyDrew),
		errors.Is(err, ErrNoWaitingEntrants),
		errors.Is(err, ErrInvalidStatusTransition):
		return true
	}
	return false
}
