package waitlist

import (
	"fmt"
	"strings"

	"icetea/internal/shared/errs"
)

// Status is the lifecycle state of a waitlist entry.
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusSelected  Status = "SELECTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusDeclined  Status = "DECLINED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses lists every legal status in lifecycle order.
var AllStatuses = []Status{StatusWaiting, StatusSelected, StatusAccepted, StatusDeclined, StatusCancelled}

// transitions is the full table of legal moves. Entries only come into
// existence as WAITING through a join, so WAITING is never a target here.
var transitions = map[Status][]Status{
	StatusWaiting:  {StatusSelected, StatusCancelled},
	StatusSelected: {StatusAccepted, StatusDeclined, StatusCancelled},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusSelected, StatusAccepted, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CountsTowardCapacity reports whether an entry in this status occupies a spot
// in the event's current_entrants counter.
func (s Status) CountsTowardCapacity() bool {
	return s.IsValid() && s != StatusCancelled
}

// Reachable reports whether any status can move to target. It lets callers
// reject impossible requests without reading the store.
func Reachable(target Status) bool {
	for from := range transitions {
		if from.CanTransitionTo(target) {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to Status) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", errs.ErrInvalidStatusTransition, from, to)
	}
	return nil
}

// ParseStatus accepts any letter case, e.g. "waiting" from older clients.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", errs.Invalid("unknown status %q", raw)
	}
	return s, nil
}
