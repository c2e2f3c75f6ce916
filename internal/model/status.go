package model

import (
	"fmt"
	"strings"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusScheduled EventStatus = "SCHEDULED"
	StatusOngoing   EventStatus = "ONGOING"
	StatusCompleted EventStatus = "COMPLETED"
	StatusCancelled EventStatus = "CANCELLED"
)

// transitions maps each status to the set of statuses reachable from it.
// COMPLETED and CANCELLED are terminal.
var transitions = map[EventStatus]map[EventStatus]bool{
	StatusScheduled: {StatusOngoing: true, StatusCancelled: true},
	StatusOngoing:   {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseEventStatus normalizes a status literal to its canonical uppercase
// form. Unknown literals are rejected.
func ParseEventStatus(raw string) (EventStatus, error) {
	s := EventStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("invalid event status %q", raw)
	}
	return s, nil
}

// Valid reports whether s is one of the four known statuses.
func (s EventStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s EventStatus) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// CanTransition reports whether s -> to is an allowed transition.
func (s EventStatus) CanTransition(to EventStatus) bool {
	return transitions[s][to]
}
