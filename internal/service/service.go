// Package service holds the core business logic: identity, the event
// lifecycle state machine and attendee registration/check-in. Every
// operation returns a structured result or an error from errors.go;
// translating those into HTTP responses is the handlers' job.
package service

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"eventman/internal/dto"
	"eventman/internal/model"
	"eventman/internal/repo"
	"eventman/pkg/token"
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

// Publisher pushes a notification message onto the bus. A nil Publisher
// disables notifications.
type Publisher interface {
	Publish(message []byte) error
}

type Service struct {
	repo   repo.Repository
	log    *zerolog.Logger
	tokens *token.Manager
	pub    Publisher
	now    func() time.Time
}

func NewService(r repo.Repository, log *zerolog.Logger, tokens *token.Manager, pub Publisher) *Service {
	return &Service{
		repo:   r,
		log:    log,
		tokens: tokens,
		pub:    pub,
		now:    time.Now,
	}
}

// clampPage normalizes skip/limit: skip is never negative, limit defaults
// to 100 and is capped at 100.
func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

func (s *Service) notifyAttendee(kind string, a *model.Attendee) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(dto.AttendeeNotificationMessage{
		Kind:       kind,
		AttendeeID: a.ID,
		EventID:    a.EventID,
		Email:      a.Email,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal attendee notification")
		return
	}
	if err := s.pub.Publish(payload); err != nil {
		s.log.Warn().Err(err).
			Int64("attendee_id", a.ID).
			Str("kind", kind).
			Msg("failed to publish attendee notification")
	}
}
