package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventman/internal/dto"
	"eventman/internal/model"
	"eventman/internal/repo"
)

func attendeeReq(eventID int64, email string) dto.RegisterAttendeeRequest {
	return dto.RegisterAttendeeRequest{
		EventID:   eventID,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
	}
}

func TestRegisterAttendee(t *testing.T) {
	f := newFakeRepo()
	svc, pub := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)

	resp, err := svc.RegisterAttendee(ctx, attendeeReq(id, "jane@example.com"))
	require.NoError(t, err)
	assert.False(t, resp.CheckInStatus)
	assert.Equal(t, id, resp.EventID)
	assert.Equal(t, 1, pub.count())
}

func TestRegisterAttendee_CheckOrder(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	now := time.Now()

	_, err := svc.RegisterAttendee(ctx, attendeeReq(99, "jane@example.com"))
	assert.ErrorIs(t, err, repo.ErrEventNotFound)

	// Duplicate is reported before closed: a registration that predates
	// cancellation still wins the error precedence.
	cancelled := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 1)
	_, err = svc.RegisterAttendee(ctx, attendeeReq(cancelled, "jane@example.com"))
	require.NoError(t, err)
	_, err = f.UpdateEventStatus(ctx, cancelled, model.StatusCancelled)
	require.NoError(t, err)
	_, err = svc.RegisterAttendee(ctx, attendeeReq(cancelled, "jane@example.com"))
	assert.ErrorIs(t, err, repo.ErrDuplicateAttendee)

	_, err = svc.RegisterAttendee(ctx, attendeeReq(cancelled, "john@example.com"))
	assert.ErrorIs(t, err, repo.ErrEventClosed)

	completed := seedEvent(t, f, 1, model.StatusCompleted, now.Add(-3*time.Hour), now.Add(-time.Hour), 10)
	_, err = svc.RegisterAttendee(ctx, attendeeReq(completed, "jane@example.com"))
	assert.ErrorIs(t, err, repo.ErrEventClosed)
}

func TestRegisterAttendee_Duplicate(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	first := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)
	second := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)

	_, err := svc.RegisterAttendee(ctx, attendeeReq(first, "jane@example.com"))
	require.NoError(t, err)

	_, err = svc.RegisterAttendee(ctx, attendeeReq(first, "jane@example.com"))
	assert.ErrorIs(t, err, repo.ErrDuplicateAttendee)

	// Same email is re-registerable against a different event.
	_, err = svc.RegisterAttendee(ctx, attendeeReq(second, "jane@example.com"))
	assert.NoError(t, err)
}

func TestRegisterAttendee_CapacityBoundary(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 3)

	// Registration N, bringing the count to exactly N, succeeds.
	_, err := svc.RegisterAttendee(ctx, attendeeReq(id, "a@example.com"))
	require.NoError(t, err)
	_, err = svc.RegisterAttendee(ctx, attendeeReq(id, "b@example.com"))
	require.NoError(t, err)
	_, err = svc.RegisterAttendee(ctx, attendeeReq(id, "c@example.com"))
	require.NoError(t, err)

	// Registration N+1 fails.
	_, err = svc.RegisterAttendee(ctx, attendeeReq(id, "d@example.com"))
	assert.ErrorIs(t, err, repo.ErrEventFull)
}

func TestCheckInAttendee(t *testing.T) {
	f := newFakeRepo()
	svc, pub := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)
	reg, err := svc.RegisterAttendee(ctx, attendeeReq(id, "jane@example.com"))
	require.NoError(t, err)

	_, err = svc.CheckInAttendee(ctx, 99)
	assert.ErrorIs(t, err, repo.ErrAttendeeNotFound)

	for _, status := range []model.EventStatus{model.StatusScheduled, model.StatusCompleted, model.StatusCancelled} {
		_, err = f.UpdateEventStatus(ctx, id, status)
		require.NoError(t, err)
		_, err = svc.CheckInAttendee(ctx, reg.ID)
		assert.ErrorIs(t, err, ErrEventNotOngoing, "status %s", status)
	}

	_, err = f.UpdateEventStatus(ctx, id, model.StatusOngoing)
	require.NoError(t, err)

	checked, err := svc.CheckInAttendee(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, checked.CheckInStatus)
	require.NotNil(t, checked.CheckInTime)

	_, err = svc.CheckInAttendee(ctx, reg.ID)
	assert.ErrorIs(t, err, repo.ErrAlreadyCheckedIn)

	// One registration notification plus one check-in notification.
	assert.Equal(t, 2, pub.count())
}

func TestCheckInAttendee_NoLazyCompletion(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	// Event past its end time but still ONGOING: check-in must not route
	// through auto-completion and must succeed.
	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusOngoing, now.Add(-3*time.Hour), now.Add(-time.Hour), 10)
	reg, err := svc.RegisterAttendee(ctx, attendeeReq(id, "jane@example.com"))
	require.NoError(t, err)

	checked, err := svc.CheckInAttendee(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, checked.CheckInStatus)

	stored, err := f.GetEventByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOngoing, stored.Status)
}

func TestBulkCheckIn(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)

	_, err := svc.RegisterAttendee(ctx, attendeeReq(id, "unchecked@example.com"))
	require.NoError(t, err)
	pre, err := svc.RegisterAttendee(ctx, attendeeReq(id, "checked@example.com"))
	require.NoError(t, err)

	_, err = f.UpdateEventStatus(ctx, id, model.StatusOngoing)
	require.NoError(t, err)
	_, err = svc.CheckInAttendee(ctx, pre.ID)
	require.NoError(t, err)

	result, err := svc.BulkCheckIn(ctx, id, []string{
		"missing@example.com",
		"unchecked@example.com",
		"checked@example.com",
	})
	require.NoError(t, err)

	// Every email was evaluated: one success, two reported errors.
	require.Len(t, result.CheckedIn, 1)
	assert.Equal(t, "unchecked@example.com", result.CheckedIn[0].Email)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "missing@example.com")
	assert.Contains(t, result.Errors[0], "not found")
	assert.Contains(t, result.Errors[1], "checked@example.com")
	assert.Contains(t, result.Errors[1], "already checked in")
	assert.Contains(t, result.Message, "2 errors")
}

func TestBulkCheckIn_Guards(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)

	_, err := svc.BulkCheckIn(ctx, 99, []string{"a@example.com"})
	assert.ErrorIs(t, err, repo.ErrEventNotFound)

	_, err = svc.BulkCheckIn(ctx, id, []string{"a@example.com"})
	assert.ErrorIs(t, err, ErrEventNotOngoing)
}

func TestListAttendees(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)
	other := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 10)

	_, err := svc.RegisterAttendee(ctx, attendeeReq(id, "a@example.com"))
	require.NoError(t, err)
	regB, err := svc.RegisterAttendee(ctx, attendeeReq(id, "b@example.com"))
	require.NoError(t, err)
	_, err = svc.RegisterAttendee(ctx, attendeeReq(other, "a@example.com"))
	require.NoError(t, err)

	unknown := int64(99)
	_, err = svc.ListAttendees(ctx, AttendeeListQuery{EventID: &unknown})
	assert.ErrorIs(t, err, repo.ErrEventNotFound)

	all, err := svc.ListAttendees(ctx, AttendeeListQuery{EventID: &id})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	email := "a@example.com"
	byEmail, err := svc.ListAttendees(ctx, AttendeeListQuery{EventID: &id, Email: &email})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, id, byEmail[0].EventID)

	_, err = f.UpdateEventStatus(ctx, id, model.StatusOngoing)
	require.NoError(t, err)
	_, err = svc.CheckInAttendee(ctx, regB.ID)
	require.NoError(t, err)

	checkedIn, err := svc.ListCheckedIn(ctx, id, 0, 100)
	require.NoError(t, err)
	require.Len(t, checkedIn, 1)
	assert.Equal(t, "b@example.com", checkedIn[0].Email)
}

func TestCapacityOneScenario(t *testing.T) {
	f := newFakeRepo()
	svc, _ := newTestService(f)
	ctx := context.Background()

	now := time.Now()
	id := seedEvent(t, f, 1, model.StatusScheduled, now.Add(time.Hour), now.Add(2*time.Hour), 1)

	a, err := svc.RegisterAttendee(ctx, attendeeReq(id, "a@example.com"))
	require.NoError(t, err)

	_, err = svc.RegisterAttendee(ctx, attendeeReq(id, "b@example.com"))
	assert.ErrorIs(t, err, repo.ErrEventFull)

	_, err = svc.UpdateEventStatus(ctx, id, "ONGOING", 1)
	require.NoError(t, err)

	checked, err := svc.CheckInAttendee(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, checked.CheckInStatus)

	_, err = svc.CheckInAttendee(ctx, a.ID)
	assert.ErrorIs(t, err, repo.ErrAlreadyCheckedIn)
}
