package service

import (
	"errors"
	"fmt"

	"eventman/internal/model"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrForbidden          = errors.New("not authorized to update this event")
	ErrInvalidRange       = errors.New("end time must be after start time")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrEventNotOngoing    = errors.New("event is not ongoing")
)

// InvalidTransitionError reports a disallowed state change, carrying the
// attempted pair for diagnostics.
type InvalidTransitionError struct {
	From model.EventStatus
	To   model.EventStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
