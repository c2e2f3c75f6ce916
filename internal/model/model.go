package model

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleOrganizer UserRole = "ORGANIZER"
	RoleAttendee  UserRole = "ATTENDEE"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name,omitempty" json:"first_name,omitempty"`
	LastName     string    `db:"last_name,omitempty" json:"last_name,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Event struct {
	ID           int64       `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Description  string      `db:"description,omitempty" json:"description,omitempty"`
	StartTime    time.Time   `db:"start_time" json:"start_time"`
	EndTime      time.Time   `db:"end_time" json:"end_time"`
	Location     string      `db:"location" json:"location"`
	MaxAttendees int         `db:"max_attendees" json:"max_attendees"`
	Status       EventStatus `db:"status" json:"status"`
	OrganizerID  int64       `db:"organizer_id" json:"organizer_id"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// NeedsCompletion reports whether the event should be lazily moved to
// COMPLETED: the end time has passed and the event never reached a
// terminal state.
func (e *Event) NeedsCompletion(now time.Time) bool {
	return !e.Status.Terminal() && e.EndTime.Before(now)
}

type Attendee struct {
	ID            int64      `db:"id" json:"id"`
	EventID       int64      `db:"event_id" json:"event_id"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	Email         string     `db:"email" json:"email"`
	PhoneNumber   string     `db:"phone_number,omitempty" json:"phone_number,omitempty"`
	CheckInStatus bool       `db:"check_in_status" json:"check_in_status"`
	CheckInTime   *time.Time `db:"check_in_time,omitempty" json:"check_in_time,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
