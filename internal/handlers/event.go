package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventman/internal/dto"
	"eventman/internal/model"
	"eventman/internal/service"
	"eventman/pkg/validator"
)

func (h *Handler) CreateEvent(c *ginext.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(c, req); verr != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("%v", verr))
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), req, requesterID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusCreated, "Event created successfully", event)
}

func (h *Handler) GetEvent(c *ginext.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.svc.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Event retrieved successfully", event)
}

func (h *Handler) ListEvents(c *ginext.Context) {
	query := service.EventListQuery{
		Skip:  intQuery(c, "skip", 0),
		Limit: intQuery(c, "limit", 100),
	}

	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseEventStatus(raw)
		if err != nil {
			dto.ErrorResponse(c, http.StatusBadRequest, "Invalid status value")
			return
		}
		query.Status = &status
	}
	if from, ok := timeQuery(c, "start_date"); ok {
		query.From = &from
	}
	if to, ok := timeQuery(c, "end_date"); ok {
		query.To = &to
	}

	events, err := h.svc.ListEvents(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Events retrieved successfully", events)
}

func (h *Handler) UpdateEvent(c *ginext.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(c, req); verr != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("%v", verr))
		return
	}

	event, err := h.svc.UpdateEvent(c.Request.Context(), eventID, req, requesterID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Event updated successfully", event)
}

func (h *Handler) UpdateEventStatus(c *ginext.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req dto.UpdateEventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(c, req); verr != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("%v", verr))
		return
	}

	event, err := h.svc.UpdateEventStatus(c.Request.Context(), eventID, req.Status, requesterID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Event status updated successfully", event)
}

func intQuery(c *ginext.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func timeQuery(c *ginext.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
