package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not in the table.
var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions is the only allowed set of prospect status transitions.
// The lifecycle is strictly linear; there are no shortcuts or reversals.
var validTransitions = map[ProspectStatus][]ProspectStatus{
	StatusScanned:     {StatusScheduled},
	StatusScheduled:   {StatusTesting},
	StatusTesting:     {StatusTested},
	StatusTested:      {StatusScored},
	StatusScored:      {StatusReadyAssets},
	StatusReadyAssets: {StatusReadyToSend},
	StatusReadyToSend: {StatusSentManual},
	StatusSentManual:  {},
}

// CanTransition reports whether current → target is an allowed transition.
// Unknown status strings are never allowed.
func CanTransition(current, target ProspectStatus) bool {
	next, ok := validTransitions[current]
	if !ok {
		return false
	}
	if _, ok := validTransitions[target]; !ok {
		return false
	}
	for _, s := range next {
		if s == target {
			return true
		}
	}
	return false
}

// Transition mutates the prospect's status after consulting the table.
func (p *Prospect) Transition(target ProspectStatus) error {
	if !CanTransition(p.Status, target) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, p.Status, target)
	}
	p.Status = target
	return nil
}
