package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpass/eventpass-api/internal/domain"
)

func newEventService(s *memStore) *EventService {
	return NewEventService(&fakeEventRepo{s: s})
}

func draftEvent() domain.Event {
	return domain.Event{
		Title:       "Workshop",
		Description: "Hands-on session",
		Location:    "Room 2",
		StartAt:     time.Now().Add(48 * time.Hour),
		EndAt:       time.Now().Add(50 * time.Hour),
		Capacity:    30,
	}
}

func TestCreateEventStatusByCreatorRole(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)

	byAdmin, err := svc.CreateEvent(context.Background(), testAdmin, draftEvent())
	require.NoError(t, err)
	assert.Equal(t, domain.EventPublished, byAdmin.Status)
	assert.Equal(t, testAdmin.ID, byAdmin.OrganizerID)
	assert.Zero(t, byAdmin.RegisteredCount)

	byOrganizer, err := svc.CreateEvent(context.Background(), testOrganizer, draftEvent())
	require.NoError(t, err)
	assert.Equal(t, domain.EventPending, byOrganizer.Status)

	_, err = svc.CreateEvent(context.Background(), testMember, draftEvent())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateEventRejectsInvalidTimeWindow(t *testing.T) {
	svc := newEventService(seededStore())

	event := draftEvent()
	event.EndAt = event.StartAt.Add(-time.Hour)

	_, err := svc.CreateEvent(context.Background(), testOrganizer, event)
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
}

func TestApproveEvent(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)

	created, err := svc.CreateEvent(context.Background(), testOrganizer, draftEvent())
	require.NoError(t, err)

	approved, err := svc.ApproveEvent(context.Background(), testAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPublished, approved.Status)

	// Approving again is not a transition from pending.
	_, err = svc.ApproveEvent(context.Background(), testAdmin, created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectEvent(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)

	created, err := svc.CreateEvent(context.Background(), testOrganizer, draftEvent())
	require.NoError(t, err)

	rejected, err := svc.RejectEvent(context.Background(), testAdmin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventRejected, rejected.Status)

	_, err = svc.RejectEvent(context.Background(), testAdmin, created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprovalRequiresAdmin(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)

	created, err := svc.CreateEvent(context.Background(), testOrganizer, draftEvent())
	require.NoError(t, err)

	_, err = svc.ApproveEvent(context.Background(), testOrganizer, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.RejectEvent(context.Background(), testMember, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Equal(t, domain.EventPending, s.event(created.ID).Status)
}

func TestUpdateEventAuthorization(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)
	s.putEvent(publishedEvent("evt-1", 50))

	updates := draftEvent()
	updates.Title = "Renamed"

	_, err := svc.UpdateEvent(context.Background(), testOtherOrganizer, "evt-1", updates)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateEvent(context.Background(), testOrganizer, "evt-1", updates)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	updated, err = svc.UpdateEvent(context.Background(), testAdmin, "evt-1", updates)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateEventAllowsLoweringCapacityBelowCount(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)

	event := publishedEvent("evt-1", 50)
	event.RegisteredCount = 40
	s.putEvent(event)

	updates := draftEvent()
	updates.Capacity = 10

	updated, err := svc.UpdateEvent(context.Background(), testOrganizer, "evt-1", updates)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Capacity)
	assert.Equal(t, 40, updated.RegisteredCount)
}

func TestDeleteEventCascadesRegistrations(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)
	s.putEvent(publishedEvent("evt-1", 50))
	s.putRegistration(domain.Registration{
		ID:      "reg-1",
		EventID: "evt-1",
		UserID:  testMember.ID,
		Status:  domain.RegistrationRegistered,
	})

	err := svc.DeleteEvent(context.Background(), testOrganizer, "evt-1")
	require.NoError(t, err)

	assert.Empty(t, s.event("evt-1").ID)
	assert.Empty(t, s.registration("reg-1").ID)
}

func TestDeleteEventForbiddenForOtherOrganizer(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)
	s.putEvent(publishedEvent("evt-1", 50))

	err := svc.DeleteEvent(context.Background(), testOtherOrganizer, "evt-1")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "evt-1", s.event("evt-1").ID)
}

func TestListManaged(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)
	s.putEvent(publishedEvent("evt-1", 50))

	other := publishedEvent("evt-2", 50)
	other.OrganizerID = testOtherOrganizer.ID
	s.putEvent(other)

	mine, total, err := svc.ListManaged(context.Background(), testOrganizer, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, "evt-1", mine[0].ID)

	all, total, err := svc.ListManaged(context.Background(), testAdmin, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	_, _, err = svc.ListManaged(context.Background(), testMember, 20, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListPendingAdminOnly(t *testing.T) {
	s := seededStore()
	svc := newEventService(s)

	_, err := svc.CreateEvent(context.Background(), testOrganizer, draftEvent())
	require.NoError(t, err)

	pending, total, err := svc.ListPending(context.Background(), testAdmin, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, pending, 1)

	_, _, err = svc.ListPending(context.Background(), testOrganizer, 20, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}
