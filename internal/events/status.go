package events

import "time"

// Phase is the registration window state shown to entrants. It is
// informational; joins are not gated on it.
type Phase string

const (
	PhaseUpcoming Phase = "UPCOMING"
	PhaseOpen     Phase = "OPEN"
	PhaseClosed   Phase = "CLOSED"
)

func (e *Event) RegistrationPhase(now time.Time) Phase {
	if e.RegistrationOpensAt != nil && now.Before(*e.RegistrationOpensAt) {
		return PhaseUpcoming
	}
	if e.RegistrationClosesAt != nil && !now.Before(*e.RegistrationClosesAt) {
		return PhaseClosed
	}
	return PhaseOpen
}
