package service

import (
	"context"
	"time"

	"eventman/internal/dto"
	"eventman/internal/model"
	"eventman/internal/monitoring"
	"eventman/internal/repo"
)

// EventListQuery narrows ListEvents. When both a status and a date range
// are given the status filter wins.
type EventListQuery struct {
	Status *model.EventStatus
	From   *time.Time
	To     *time.Time
	Skip   int
	Limit  int
}

func (s *Service) CreateEvent(ctx context.Context, req dto.CreateEventRequest, organizerID int64) (*dto.EventResponse, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidRange
	}

	id, err := s.repo.CreateEvent(ctx, &model.Event{
		Name:         req.Name,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		MaxAttendees: req.MaxAttendees,
		Status:       model.StatusScheduled,
		OrganizerID:  organizerID,
	})
	if err != nil {
		return nil, err
	}

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	monitoring.EventsCreated.Inc()
	s.log.Info().Int64("event_id", id).Int64("organizer_id", organizerID).Msg("event created")

	resp := dto.NewEventResponse(event)
	return &resp, nil
}

func (s *Service) GetEvent(ctx context.Context, eventID int64) (*dto.EventResponse, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	event, err = s.completeIfExpired(ctx, event)
	if err != nil {
		return nil, err
	}

	resp := dto.NewEventResponse(event)
	return &resp, nil
}

func (s *Service) ListEvents(ctx context.Context, q EventListQuery) ([]dto.EventResponse, error) {
	skip, limit := clampPage(q.Skip, q.Limit)

	filter := repo.EventFilter{Skip: skip, Limit: limit}
	// Status filter takes precedence over the date range.
	switch {
	case q.Status != nil:
		filter.Status = q.Status
	case q.From != nil && q.To != nil:
		filter.From = q.From
		filter.To = q.To
	}

	events, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		event, err := s.completeIfExpired(ctx, &events[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, dto.NewEventResponse(event))
	}
	return resp, nil
}

func (s *Service) UpdateEvent(ctx context.Context, eventID int64, req dto.UpdateEventRequest, requesterID int64) (*dto.EventResponse, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != requesterID {
		return nil, ErrForbidden
	}

	if req.StartTime != nil && req.EndTime != nil && !req.StartTime.Before(*req.EndTime) {
		return nil, ErrInvalidRange
	}

	patch := repo.EventPatch{
		Name:         req.Name,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Location:     req.Location,
		MaxAttendees: req.MaxAttendees,
	}
	// A status literal in the patch is normalized and validated but does
	// not run through the transition table; only UpdateEventStatus does.
	if req.Status != nil {
		status, err := model.ParseEventStatus(*req.Status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		patch.Status = &status
	}

	updated, err := s.repo.UpdateEvent(ctx, eventID, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("event_id", eventID).Msg("event updated")
	resp := dto.NewEventResponse(updated)
	return &resp, nil
}

func (s *Service) UpdateEventStatus(ctx context.Context, eventID int64, rawStatus string, requesterID int64) (*dto.EventResponse, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != requesterID {
		return nil, ErrForbidden
	}

	status, err := model.ParseEventStatus(rawStatus)
	if err != nil {
		return nil, ErrInvalidStatus
	}
	if !event.Status.CanTransition(status) {
		return nil, &InvalidTransitionError{From: event.Status, To: status}
	}

	updated, err := s.repo.UpdateEventStatus(ctx, eventID, status)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("event_id", eventID).
		Str("from", string(event.Status)).
		Str("to", string(status)).
		Msg("event status updated")

	resp := dto.NewEventResponse(updated)
	return &resp, nil
}

// completeIfExpired applies the lazy auto-transition to COMPLETED on the
// read path: an event whose end time has passed and that never reached a
// terminal state is completed before being returned. This fires from
// SCHEDULED as well as ONGOING.
func (s *Service) completeIfExpired(ctx context.Context, event *model.Event) (*model.Event, error) {
	if !event.NeedsCompletion(s.now()) {
		return event, nil
	}

	updated, err := s.repo.UpdateEventStatus(ctx, event.ID, model.StatusCompleted)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("event_id", event.ID).
		Str("from", string(event.Status)).
		Msg("event auto-completed past end time")
	return updated, nil
}
