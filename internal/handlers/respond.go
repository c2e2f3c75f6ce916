// Package handlers is the HTTP transport layer: it binds and validates
// requests, invokes the core service and maps its errors onto the uniform
// response envelope.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventman/internal/dto"
	"eventman/internal/repo"
	"eventman/internal/service"
)

type Handler struct {
	svc *service.Service
	log *zerolog.Logger
}

func New(svc *service.Service, log *zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// respondError owns the single error -> HTTP status mapping for the whole
// transport layer.
func (h *Handler) respondError(c *ginext.Context, err error) {
	var transitionErr *service.InvalidTransitionError

	switch {
	case errors.Is(err, repo.ErrEventNotFound),
		errors.Is(err, repo.ErrUserNotFound),
		errors.Is(err, repo.ErrAttendeeNotFound):
		dto.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		dto.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		dto.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.As(err, &transitionErr),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEventNotOngoing),
		errors.Is(err, repo.ErrDuplicateAttendee),
		errors.Is(err, repo.ErrEventClosed),
		errors.Is(err, repo.ErrEventFull),
		errors.Is(err, repo.ErrAlreadyCheckedIn):
		dto.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		dto.ErrorResponse(c, http.StatusInternalServerError, "Service is currently unavailable. Please try again later.")
	}
}

// requesterID returns the authenticated user id placed in the context by
// the auth middleware.
func requesterID(c *ginext.Context) int64 {
	return c.GetInt64("user_id")
}
