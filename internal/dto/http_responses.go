package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventman/internal/model"
)

type RegisterUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=50"`
	LastName  string `json:"last_name" validate:"omitempty,max=50"`
	Role      string `json:"role" validate:"omitempty,oneof=ADMIN ORGANIZER ATTENDEE"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Role      model.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type CreateEventRequest struct {
	Name         string    `json:"name" validate:"required,min=1,max=100"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	Location     string    `json:"location" validate:"required,min=1,max=200"`
	MaxAttendees int       `json:"max_attendees" validate:"required,positive"`
}

// UpdateEventRequest is a partial patch: nil fields are left untouched.
type UpdateEventRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string    `json:"description"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Location     *string    `json:"location" validate:"omitempty,min=1,max=200"`
	MaxAttendees *int       `json:"max_attendees" validate:"omitempty,positive"`
	Status       *string    `json:"status"`
}

type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type EventResponse struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Location     string            `json:"location"`
	MaxAttendees int               `json:"max_attendees"`
	Status       model.EventStatus `json:"status"`
	OrganizerID  int64             `json:"organizer_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func NewEventResponse(e *model.Event) EventResponse {
	return EventResponse{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Location:     e.Location,
		MaxAttendees: e.MaxAttendees,
		Status:       e.Status,
		OrganizerID:  e.OrganizerID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

type RegisterAttendeeRequest struct {
	EventID     int64  `json:"event_id" validate:"required"`
	FirstName   string `json:"first_name" validate:"required,min=1,max=50"`
	LastName    string `json:"last_name" validate:"required,min=1,max=50"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=20"`
}

type BulkCheckInRequest struct {
	EventID        int64    `json:"event_id" validate:"required"`
	AttendeeEmails []string `json:"attendee_emails" validate:"required,min=1"`
}

type AttendeeResponse struct {
	ID            int64      `json:"id"`
	EventID       int64      `json:"event_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	PhoneNumber   string     `json:"phone_number,omitempty"`
	CheckInStatus bool       `json:"check_in_status"`
	CheckInTime   *time.Time `json:"check_in_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewAttendeeResponse(a *model.Attendee) AttendeeResponse {
	return AttendeeResponse{
		ID:            a.ID,
		EventID:       a.EventID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		PhoneNumber:   a.PhoneNumber,
		CheckInStatus: a.CheckInStatus,
		CheckInTime:   a.CheckInTime,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AttendeeNotificationMessage is the payload published to RabbitMQ after a
// successful registration or check-in.
type AttendeeNotificationMessage struct {
	Kind       string `json:"kind"` // "registered" | "checked_in"
	AttendeeID int64  `json:"attendee_id"`
	EventID    int64  `json:"event_id"`
	Email      string `json:"email"`
}

const (
	NotifyRegistered = "registered"
	NotifyCheckedIn  = "checked_in"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	StatusCode int    `json:"status_code"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

func SuccessResponse(c *ginext.Context, code int, message string, data any) {
	c.JSON(code, Response{
		StatusCode: code,
		Success:    true,
		Message:    message,
		Data:       data,
	})
}

func ErrorResponse(c *ginext.Context, code int, message string) {
	c.JSON(code, Response{
		StatusCode: code,
		Success:    false,
		Message:    message,
		Data:       nil,
	})
}
