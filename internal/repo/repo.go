package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"eventman/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrAttendeeNotFound  = errors.New("attendee not found")
	ErrDuplicateAttendee = errors.New("attendee already registered for this event")
	ErrEventFull         = errors.New("event has reached maximum attendees")
	ErrEventClosed       = errors.New("event is not open for registration")
	ErrAlreadyCheckedIn  = errors.New("attendee already checked in")
)

// EventFilter narrows ListEvents. Status takes precedence over the date
// range when both are set.
type EventFilter struct {
	Status *model.EventStatus
	From   *time.Time
	To     *time.Time
	Skip   int
	Limit  int
}

type AttendeeFilter struct {
	EventID   *int64
	Email     *string
	CheckedIn *bool
	Skip      int
	Limit     int
}

// EventPatch carries the fields of a partial event update; nil fields are
// left untouched.
type EventPatch struct {
	Name         *string
	Description  *string
	StartTime    *time.Time
	EndTime      *time.Time
	Location     *string
	MaxAttendees *int
	Status       *model.EventStatus
}

type Repository interface {
	CreateUser(ctx context.Context, u *model.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	ListEvents(ctx context.Context, f EventFilter) ([]model.Event, error)
	UpdateEvent(ctx context.Context, id int64, p EventPatch) (*model.Event, error)
	UpdateEventStatus(ctx context.Context, id int64, status model.EventStatus) (*model.Event, error)

	CreateAttendeeTx(ctx context.Context, a *model.Attendee) (int64, error)
	GetAttendeeByID(ctx context.Context, id int64) (*model.Attendee, error)
	GetAttendeeByEventAndEmail(ctx context.Context, eventID int64, email string) (*model.Attendee, error)
	ListAttendees(ctx context.Context, f AttendeeFilter) ([]model.Attendee, error)
	CountAttendees(ctx context.Context, eventID int64) (int, error)
	CheckInAttendee(ctx context.Context, id int64, at time.Time) (*model.Attendee, error)

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.up.sql")
}

func (r *repository) MigrateDown(migrationsDir string) error {
	return r.applyMigrations(migrationsDir, "*.down.sql")
}

func (r *repository) applyMigrations(migrationsDir, pattern string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, pattern))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations (%s) applied from %s", pattern, migrationsDir)
	return nil
}

func (r *repository) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at, updated_at
		FROM users WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *repository) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

const eventColumns = `id, name, description, start_time, end_time, location,
	max_attendees, status, organizer_id, created_at, updated_at`

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (name, description, start_time, end_time, location, max_attendees, status, organizer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.Name, e.Description, e.StartTime, e.EndTime, e.Location,
		e.MaxAttendees, e.Status, e.OrganizerID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEventRow(r.db.QueryRowContext(ctx, query, id))
}

func scanEventRow(row *sql.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime, &e.Location,
		&e.MaxAttendees, &e.Status, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &e, nil
}

func (r *repository) ListEvents(ctx context.Context, f EventFilter) ([]model.Event, error) {
	var (
		conds []string
		args  []any
	)
	switch {
	case f.Status != nil:
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	case f.From != nil && f.To != nil:
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("start_time >= $%d", len(args)))
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("end_time <= $%d", len(args)))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, f.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime, &e.Location,
			&e.MaxAttendees, &e.Status, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *repository) UpdateEvent(ctx context.Context, id int64, p EventPatch) (*model.Event, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.StartTime != nil {
		set("start_time", *p.StartTime)
	}
	if p.EndTime != nil {
		set("end_time", *p.EndTime)
	}
	if p.Location != nil {
		set("location", *p.Location)
	}
	if p.MaxAttendees != nil {
		set("max_attendees", *p.MaxAttendees)
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), eventColumns)

	return scanEventRow(r.db.QueryRowContext(ctx, query, args...))
}

func (r *repository) UpdateEventStatus(ctx context.Context, id int64, status model.EventStatus) (*model.Event, error) {
	query := `
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + eventColumns
	return scanEventRow(r.db.QueryRowContext(ctx, query, status, id))
}

const attendeeColumns = `id, event_id, first_name, last_name, email,
	phone_number, check_in_status, check_in_time, created_at, updated_at`

// CreateAttendeeTx inserts a registration while holding a row lock on the
// event, re-validating status, duplicate and capacity under the lock so
// concurrent registrations near the capacity boundary serialize per event.
// The unique index on (event_id, email) backstops duplicate races.
func (r *repository) CreateAttendeeTx(ctx context.Context, a *model.Attendee) (int64, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var (
		status       model.EventStatus
		maxAttendees int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT status, max_attendees FROM events WHERE id = $1 FOR UPDATE
	`, a.EventID).Scan(&status, &maxAttendees)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return 0, ErrEventNotFound
	}
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to lock event row: %w", err)
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendees WHERE event_id = $1 AND email = $2
	`, a.EventID, a.Email).Scan(&existing)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to check duplicate registration: %w", err)
	}
	if existing > 0 {
		_ = tx.Rollback()
		return 0, ErrDuplicateAttendee
	}

	if status.Terminal() {
		_ = tx.Rollback()
		return 0, ErrEventClosed
	}

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendees WHERE event_id = $1
	`, a.EventID).Scan(&count)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	if count >= maxAttendees {
		_ = tx.Rollback()
		return 0, ErrEventFull
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendees (event_id, first_name, last_name, email, phone_number, check_in_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW(), NOW())
		RETURNING id
	`, a.EventID, a.FirstName, a.LastName, a.Email, a.PhoneNumber).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to create attendee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func (r *repository) GetAttendeeByID(ctx context.Context, id int64) (*model.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = $1`
	return scanAttendeeRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *repository) GetAttendeeByEventAndEmail(ctx context.Context, eventID int64, email string) (*model.Attendee, error) {
	query := `SELECT ` + attendeeColumns + ` FROM attendees WHERE event_id = $1 AND email = $2`
	return scanAttendeeRow(r.db.QueryRowContext(ctx, query, eventID, email))
}

func scanAttendeeRow(row *sql.Row) (*model.Attendee, error) {
	var a model.Attendee
	err := row.Scan(
		&a.ID, &a.EventID, &a.FirstName, &a.LastName, &a.Email,
		&a.PhoneNumber, &a.CheckInStatus, &a.CheckInTime, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttendeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendee: %w", err)
	}
	return &a, nil
}

func (r *repository) ListAttendees(ctx context.Context, f AttendeeFilter) ([]model.Attendee, error) {
	var (
		conds []string
		args  []any
	)
	if f.EventID != nil {
		args = append(args, *f.EventID)
		conds = append(conds, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if f.Email != nil {
		args = append(args, *f.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if f.CheckedIn != nil {
		args = append(args, *f.CheckedIn)
		conds = append(conds, fmt.Sprintf("check_in_status = $%d", len(args)))
	}

	query := `SELECT ` + attendeeColumns + ` FROM attendees`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, f.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(
			&a.ID, &a.EventID, &a.FirstName, &a.LastName, &a.Email,
			&a.PhoneNumber, &a.CheckInStatus, &a.CheckInTime, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *repository) CountAttendees(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendees WHERE event_id = $1
	`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return count, nil
}

// CheckInAttendee flips check_in_status guarded by its current value, so a
// concurrent double check-in loses the race and reports ErrAlreadyCheckedIn.
func (r *repository) CheckInAttendee(ctx context.Context, id int64, at time.Time) (*model.Attendee, error) {
	query := `
		UPDATE attendees
		SET check_in_status = true, check_in_time = $1, updated_at = NOW()
		WHERE id = $2 AND check_in_status = false
		RETURNING ` + attendeeColumns
	a, err := scanAttendeeRow(r.db.QueryRowContext(ctx, query, at, id))
	if errors.Is(err, ErrAttendeeNotFound) {
		// Row exists but was already checked in, or is genuinely absent.
		if _, lookupErr := r.GetAttendeeByID(ctx, id); lookupErr == nil {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, ErrAttendeeNotFound
	}
	return a, err
}
