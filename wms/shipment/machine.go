package shipment

import (
	"fmt"
	"slices"

	"intake-app/apperror"
)

// Machine decides which status changes SetStatus may perform.
//
// Permissive mode only checks that the target is a legal status other than
// the current one, so it allows skipping ahead, moving back and leaving
// Delivered. Strict mode allows only the next status on the happy path or
// Delayed, Delivered is terminal, and moving backwards needs an Override.
//
// When DelayResumable is set, a delayed shipment may rejoin the path at the
// status it left from (strict) or anywhere (permissive). Otherwise Delayed
// is absorbing in both modes and only an Override leaves it.
type Machine struct {
	Strict         bool
	DelayResumable bool
}

// Targets lists the statuses reachable from "from". preDelay is only
// consulted when from is Delayed.
func (m Machine) Targets(from, preDelay Status) []Status {
	if from == Delayed {
		switch {
		case !m.DelayResumable:
			return nil
		case !m.Strict:
			return slices.Clone(HappyPath)
		case preDelay.Rank() < 0:
			return nil
		default:
			return []Status{preDelay}
		}
	}

	rank := from.Rank()
	if rank < 0 {
		return nil
	}
	if !m.Strict {
		targets := make([]Status, 0, len(All)-1)
		for _, s := range All {
			if s != from {
				targets = append(targets, s)
			}
		}
		return targets
	}
	if from.Terminal() {
		return nil
	}
	return []Status{HappyPath[rank+1], Delayed}
}

// Table is the full transition table for statuses on the happy path. A
// delayed shipment's targets depend on where it left the path; see Targets.
func (m Machine) Table() map[Status][]Status {
	table := make(map[Status][]Status, len(All))
	for _, s := range HappyPath {
		table[s] = m.Targets(s, "")
	}
	return table
}

// Check validates a SetStatus request.
func (m Machine) Check(from, preDelay, to Status) error {
	if slices.Contains(m.Targets(from, preDelay), to) {
		return nil
	}

	switch {
	case from == to:
		return apperror.Conflict("status", fmt.Sprintf("shipment is already %s", from))
	case from.Terminal():
		return apperror.Conflict("status", fmt.Sprintf("shipment is %s; only an override can change it", from))
	case from == Delayed && !m.DelayResumable:
		return apperror.Conflict("status", "a delayed shipment can only be released by override")
	case from == Delayed:
		return apperror.Conflict("status", fmt.Sprintf("a delayed shipment must resume at %s", preDelay))
	case to.Rank() < from.Rank():
		return apperror.Conflict("status", fmt.Sprintf("moving back from %s to %s requires an override", from, to))
	default:
		return apperror.Conflict("status", fmt.Sprintf("cannot move from %s to %s", from, to))
	}
}

// Apply returns the pre-delay memory after a transition to "to". Leaving
// Delayed clears it; entering Delayed remembers where the shipment was.
func Apply(from, preDelay, to Status) Status {
	switch {
	case to == Delayed && from == Delayed:
		return preDelay
	case to == Delayed:
		return from
	default:
		return ""
	}
}
