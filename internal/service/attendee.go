package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventman/internal/dto"
	"eventman/internal/model"
	"eventman/internal/monitoring"
	"eventman/internal/repo"
)

type AttendeeListQuery struct {
	EventID   *int64
	Email     *string
	CheckedIn *bool
	Skip      int
	Limit     int
}

// BulkCheckInResult aggregates a bulk check-in: every email is processed,
// per-email failures are reported rather than aborting the call.
type BulkCheckInResult struct {
	CheckedIn []dto.AttendeeResponse `json:"checked_in"`
	Errors    []string               `json:"errors,omitempty"`
	Message   string                 `json:"message"`
}

// RegisterAttendee checks, in order: event exists, duplicate, event closed,
// event full. The order is part of the contract; CreateAttendeeTx re-runs
// the same checks under a row lock to close the race window.
func (s *Service) RegisterAttendee(ctx context.Context, req dto.RegisterAttendeeRequest) (*dto.AttendeeResponse, error) {
	event, err := s.repo.GetEventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetAttendeeByEventAndEmail(ctx, req.EventID, req.Email); err == nil {
		monitoring.Registrations.WithLabelValues("duplicate").Inc()
		return nil, repo.ErrDuplicateAttendee
	} else if !errors.Is(err, repo.ErrAttendeeNotFound) {
		return nil, err
	}

	if event.Status.Terminal() {
		return nil, repo.ErrEventClosed
	}

	count, err := s.repo.CountAttendees(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if count >= event.MaxAttendees {
		monitoring.Registrations.WithLabelValues("full").Inc()
		return nil, repo.ErrEventFull
	}

	id, err := s.repo.CreateAttendeeTx(ctx, &model.Attendee{
		EventID:     req.EventID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	attendee, err := s.repo.GetAttendeeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	monitoring.Registrations.WithLabelValues("success").Inc()
	s.log.Info().
		Int64("attendee_id", id).
		Int64("event_id", req.EventID).
		Str("email", req.Email).
		Msg("attendee registered")

	s.notifyAttendee(dto.NotifyRegistered, attendee)

	resp := dto.NewAttendeeResponse(attendee)
	return &resp, nil
}

// CheckInAttendee requires the event to be ONGOING; unlike the event read
// path it never triggers lazy auto-completion.
func (s *Service) CheckInAttendee(ctx context.Context, attendeeID int64) (*dto.AttendeeResponse, error) {
	attendee, err := s.repo.GetAttendeeByID(ctx, attendeeID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.GetEventByID(ctx, attendee.EventID)
	if err != nil {
		return nil, err
	}
	if event.Status != model.StatusOngoing {
		monitoring.CheckIns.WithLabelValues("single", "rejected").Inc()
		return nil, ErrEventNotOngoing
	}
	if attendee.CheckInStatus {
		monitoring.CheckIns.WithLabelValues("single", "rejected").Inc()
		return nil, repo.ErrAlreadyCheckedIn
	}

	updated, err := s.repo.CheckInAttendee(ctx, attendeeID, s.now())
	if err != nil {
		return nil, err
	}

	monitoring.CheckIns.WithLabelValues("single", "success").Inc()
	s.log.Info().
		Int64("attendee_id", attendeeID).
		Int64("event_id", event.ID).
		Msg("attendee checked in")

	s.notifyAttendee(dto.NotifyCheckedIn, updated)

	resp := dto.NewAttendeeResponse(updated)
	return &resp, nil
}

// BulkCheckIn processes every email in the given order and never aborts
// early; absent and already-checked-in attendees are reported per email.
func (s *Service) BulkCheckIn(ctx context.Context, eventID int64, emails []string) (*BulkCheckInResult, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != model.StatusOngoing {
		return nil, ErrEventNotOngoing
	}

	result := &BulkCheckInResult{CheckedIn: []dto.AttendeeResponse{}}
	for _, email := range emails {
		attendee, err := s.repo.GetAttendeeByEventAndEmail(ctx, eventID, email)
		if err != nil {
			if errors.Is(err, repo.ErrAttendeeNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("attendee with email %s not found", email))
				continue
			}
			return nil, err
		}
		if attendee.CheckInStatus {
			result.Errors = append(result.Errors, fmt.Sprintf("attendee with email %s already checked in", email))
			continue
		}

		updated, err := s.repo.CheckInAttendee(ctx, attendee.ID, s.now())
		if err != nil {
			if errors.Is(err, repo.ErrAlreadyCheckedIn) {
				result.Errors = append(result.Errors, fmt.Sprintf("attendee with email %s already checked in", email))
				continue
			}
			return nil, err
		}

		monitoring.CheckIns.WithLabelValues("bulk", "success").Inc()
		result.CheckedIn = append(result.CheckedIn, dto.NewAttendeeResponse(updated))
		s.notifyAttendee(dto.NotifyCheckedIn, updated)
	}

	result.Message = "Bulk check-in completed"
	if len(result.Errors) > 0 {
		result.Message += fmt.Sprintf(" with %d errors: %s", len(result.Errors), strings.Join(result.Errors, "; "))
	}

	s.log.Info().
		Int64("event_id", eventID).
		Int("checked_in", len(result.CheckedIn)).
		Int("errors", len(result.Errors)).
		Msg("bulk check-in completed")
	return result, nil
}

func (s *Service) ListAttendees(ctx context.Context, q AttendeeListQuery) ([]dto.AttendeeResponse, error) {
	if q.EventID != nil {
		if _, err := s.repo.GetEventByID(ctx, *q.EventID); err != nil {
			return nil, err
		}
	}

	skip, limit := clampPage(q.Skip, q.Limit)
	attendees, err := s.repo.ListAttendees(ctx, repo.AttendeeFilter{
		EventID:   q.EventID,
		Email:     q.Email,
		CheckedIn: q.CheckedIn,
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]dto.AttendeeResponse, 0, len(attendees))
	for i := range attendees {
		resp = append(resp, dto.NewAttendeeResponse(&attendees[i]))
	}
	return resp, nil
}

func (s *Service) ListCheckedIn(ctx context.Context, eventID int64, skip, limit int) ([]dto.AttendeeResponse, error) {
	checkedIn := true
	return s.ListAttendees(ctx, AttendeeListQuery{
		EventID:   &eventID,
		CheckedIn: &checkedIn,
		Skip:      skip,
		Limit:     limit,
	})
}
