package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/wb-go/wbf/ginext"

	"eventman/internal/dto"
	"eventman/internal/service"
	"eventman/pkg/validator"
)

func (h *Handler) RegisterAttendee(c *ginext.Context) {
	var req dto.RegisterAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(c, req); verr != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("%v", verr))
		return
	}

	attendee, err := h.svc.RegisterAttendee(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusCreated, "Attendee registered successfully", attendee)
}

func (h *Handler) CheckInAttendee(c *ginext.Context) {
	attendeeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid attendee ID")
		return
	}

	attendee, err := h.svc.CheckInAttendee(c.Request.Context(), attendeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Attendee checked in successfully", attendee)
}

func (h *Handler) BulkCheckIn(c *ginext.Context) {
	var req dto.BulkCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(c, req); verr != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("%v", verr))
		return
	}

	result, err := h.svc.BulkCheckIn(c.Request.Context(), req.EventID, req.AttendeeEmails)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, result.Message, result)
}

// BulkCheckInUpload accepts a CSV file whose first column per row is an
// attendee email; blank rows are skipped and file order is preserved.
func (h *Handler) BulkCheckInUpload(c *ginext.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Missing CSV file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	emails, err := parseEmailCSV(file)
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Failed to parse CSV file")
		return
	}
	if len(emails) == 0 {
		dto.ErrorResponse(c, http.StatusBadRequest, "CSV file contains no emails")
		return
	}

	result, err := h.svc.BulkCheckIn(c.Request.Context(), eventID, emails)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, result.Message, result)
}

func parseEmailCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var emails []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		email := strings.TrimSpace(record[0])
		if email == "" {
			continue
		}
		emails = append(emails, email)
	}
	return emails, nil
}

func (h *Handler) ListAttendees(c *ginext.Context) {
	query := service.AttendeeListQuery{
		Skip:  intQuery(c, "skip", 0),
		Limit: intQuery(c, "limit", 100),
	}

	if raw := c.Query("event_id"); raw != "" {
		eventID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			dto.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID")
			return
		}
		query.EventID = &eventID
	}
	if email := c.Query("email"); email != "" {
		query.Email = &email
	}
	if raw := c.Query("check_in_status"); raw != "" {
		checkedIn, err := strconv.ParseBool(raw)
		if err != nil {
			dto.ErrorResponse(c, http.StatusBadRequest, "Invalid check_in_status value")
			return
		}
		query.CheckedIn = &checkedIn
	}

	attendees, err := h.svc.ListAttendees(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Attendees retrieved successfully", attendees)
}

func (h *Handler) ListCheckedIn(c *ginext.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		dto.ErrorResponse(c, http.StatusBadRequest, "Invalid event ID")
		return
	}

	attendees, err := h.svc.ListCheckedIn(c.Request.Context(), eventID,
		intQuery(c, "skip", 0), intQuery(c, "limit", 100))
	if err != nil {
		h.respondError(c, err)
		return
	}
	dto.SuccessResponse(c, http.StatusOK, "Checked-in attendees retrieved successfully", attendees)
}
