package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventman/internal/model"
	"eventman/internal/repo"
	"eventman/pkg/token"
)

// fakeRepo is an in-memory Repository for service tests. CreateAttendeeTx
// mirrors the production backstop: it re-validates status, duplicate and
// capacity before inserting.
type fakeRepo struct {
	mu        sync.Mutex
	users     map[int64]*model.User
	events    map[int64]*model.Event
	attendees map[int64]*model.Attendee
	nextID    int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     map[int64]*model.User{},
		events:    map[int64]*model.Event{},
		attendees: map[int64]*model.Attendee{},
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) CreateUser(_ context.Context, u *model.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	cp.ID = f.id()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.users[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (f *fakeRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) CreateEvent(_ context.Context, e *model.Event) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	cp.ID = f.id()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.events[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeRepo) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) ListEvents(_ context.Context, filter repo.EventFilter) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Event
	for id := int64(1); id <= f.nextID; id++ {
		e, ok := f.events[id]
		if !ok {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && filter.From != nil && filter.To != nil {
			if e.StartTime.Before(*filter.From) || e.EndTime.After(*filter.To) {
				continue
			}
		}
		all = append(all, *e)
	}
	if filter.Skip >= len(all) {
		return nil, nil
	}
	all = all[filter.Skip:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (f *fakeRepo) UpdateEvent(_ context.Context, id int64, p repo.EventPatch) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.MaxAttendees != nil {
		e.MaxAttendees = *p.MaxAttendees
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) UpdateEventStatus(_ context.Context, id int64, status model.EventStatus) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) CreateAttendeeTx(_ context.Context, a *model.Attendee) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[a.EventID]
	if !ok {
		return 0, repo.ErrEventNotFound
	}
	count := 0
	for _, existing := range f.attendees {
		if existing.EventID != a.EventID {
			continue
		}
		if existing.Email == a.Email {
			return 0, repo.ErrDuplicateAttendee
		}
		count++
	}
	if e.Status.Terminal() {
		return 0, repo.ErrEventClosed
	}
	if count >= e.MaxAttendees {
		return 0, repo.ErrEventFull
	}
	cp := *a
	cp.ID = f.id()
	cp.CheckInStatus = false
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.attendees[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeRepo) GetAttendeeByID(_ context.Context, id int64) (*model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attendees[id]
	if !ok {
		return nil, repo.ErrAttendeeNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) GetAttendeeByEventAndEmail(_ context.Context, eventID int64, email string) (*model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attendees {
		if a.EventID == eventID && a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrAttendeeNotFound
}

func (f *fakeRepo) ListAttendees(_ context.Context, filter repo.AttendeeFilter) ([]model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Attendee
	for id := int64(1); id <= f.nextID; id++ {
		a, ok := f.attendees[id]
		if !ok {
			continue
		}
		if filter.EventID != nil && a.EventID != *filter.EventID {
			continue
		}
		if filter.Email != nil && a.Email != *filter.Email {
			continue
		}
		if filter.CheckedIn != nil && a.CheckInStatus != *filter.CheckedIn {
			continue
		}
		all = append(all, *a)
	}
	if filter.Skip >= len(all) {
		return nil, nil
	}
	all = all[filter.Skip:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (f *fakeRepo) CountAttendees(_ context.Context, eventID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.attendees {
		if a.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CheckInAttendee(_ context.Context, id int64, at time.Time) (*model.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attendees[id]
	if !ok {
		return nil, repo.ErrAttendeeNotFound
	}
	if a.CheckInStatus {
		return nil, repo.ErrAlreadyCheckedIn
	}
	a.CheckInStatus = true
	a.CheckInTime = &at
	a.UpdatedAt = at
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) MigrateUp(string) error   { return nil }
func (f *fakeRepo) MigrateDown(string) error { return nil }

// recordingPublisher captures notification payloads.
type recordingPublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *recordingPublisher) Publish(message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

const testSecret = "test-secret-key-at-least-32-chars-long"

func newTestService(f *fakeRepo) (*Service, *recordingPublisher) {
	log := zerolog.Nop()
	tokens, err := token.NewManager(testSecret, 30*time.Minute)
	if err != nil {
		panic(err)
	}
	pub := &recordingPublisher{}
	return NewService(f, &log, tokens, pub), pub
}
