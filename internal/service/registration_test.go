package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventpass/eventpass-api/internal/domain"
)

func newRegistrationService(s *memStore) *RegistrationService {
	return NewRegistrationService(&fakeRegistrationRepo{s: s}, &fakeEventRepo{s: s})
}

func TestRegisterIssuesTicket(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 10))

	reg, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	assert.Equal(t, domain.RegistrationRegistered, reg.Status)
	assert.True(t, strings.HasPrefix(reg.TicketCode, "QR-evt-1-"+testMember.ID+"-"))
	assert.Equal(t, "Tech Meetup", reg.EventTitle)
	assert.Equal(t, 1, s.event("evt-1").RegisteredCount)
}

func TestRegisterTwiceFails(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 10))

	_, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), testMember, "evt-1")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, s.event("evt-1").RegisteredCount)
}

func TestRegisterFullEvent(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 1))

	_, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), testOtherMember, "evt-1")
	assert.ErrorIs(t, err, ErrEventFull)
	assert.Equal(t, 1, s.event("evt-1").RegisteredCount)
}

func TestRegisterUnpublishedEvent(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)

	event := publishedEvent("evt-1", 10)
	event.Status = domain.EventPending
	s.putEvent(event)

	_, err := svc.Register(context.Background(), testMember, "evt-1")
	assert.ErrorIs(t, err, ErrEventNotPublished)
}

func TestRegisterEndedEvent(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)

	event := publishedEvent("evt-1", 10)
	event.StartAt = time.Now().Add(-3 * time.Hour)
	event.EndAt = time.Now().Add(-time.Hour)
	s.putEvent(event)

	_, err := svc.Register(context.Background(), testMember, "evt-1")
	assert.ErrorIs(t, err, ErrEventEnded)
}

func TestCancelReleasesSeat(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 1))

	reg, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	// The event is full; the second member is turned away.
	_, err = svc.Register(context.Background(), testOtherMember, "evt-1")
	require.ErrorIs(t, err, ErrEventFull)

	require.NoError(t, svc.Cancel(context.Background(), testMember, reg.ID))
	assert.Equal(t, 0, s.event("evt-1").RegisteredCount)

	// The freed seat goes to the next registrant, and only to one.
	_, err = svc.Register(context.Background(), testOtherMember, "evt-1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), testMember, "evt-1")
	assert.ErrorIs(t, err, ErrEventFull)
	assert.Equal(t, 1, s.event("evt-1").RegisteredCount)
}

func TestReregisterKeepsTicketCode(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 10))

	first, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), testMember, first.ID))

	second, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TicketCode, second.TicketCode)
	assert.Equal(t, domain.RegistrationRegistered, second.Status)
	assert.Equal(t, 1, s.event("evt-1").RegisteredCount)
}

func TestCancelCheckedInTicketFails(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 10))

	reg, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	checked := s.registration(reg.ID)
	checked.Status = domain.RegistrationCheckedIn
	s.putRegistration(checked)

	err = svc.Cancel(context.Background(), testMember, reg.ID)
	assert.ErrorIs(t, err, ErrTicketUsed)
	assert.Equal(t, 1, s.event("evt-1").RegisteredCount)
}

func TestCancelCancelledIsNoOp(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 10))

	reg, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), testMember, reg.ID))
	require.NoError(t, svc.Cancel(context.Background(), testMember, reg.ID))

	// The seat is released once, not twice.
	assert.Equal(t, 0, s.event("evt-1").RegisteredCount)
}

func TestCancelSomeoneElsesTicket(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 10))

	reg, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), testOtherMember, reg.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, domain.RegistrationRegistered, s.registration(reg.ID).Status)
}

func TestListMineOrdersActiveFirst(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)

	now := time.Now().UTC()
	s.putRegistration(domain.Registration{
		ID: "reg-old", EventID: "evt-1", UserID: testMember.ID,
		Status: domain.RegistrationRegistered, CreatedAt: now.Add(-2 * time.Hour),
	})
	s.putRegistration(domain.Registration{
		ID: "reg-cancelled", EventID: "evt-2", UserID: testMember.ID,
		Status: domain.RegistrationCancelled, CreatedAt: now,
	})
	s.putRegistration(domain.Registration{
		ID: "reg-new", EventID: "evt-3", UserID: testMember.ID,
		Status: domain.RegistrationCheckedIn, CreatedAt: now.Add(-time.Hour),
	})

	regs, err := svc.ListMine(context.Background(), testMember)
	require.NoError(t, err)
	require.Len(t, regs, 3)

	assert.Equal(t, "reg-new", regs[0].ID)
	assert.Equal(t, "reg-old", regs[1].ID)
	assert.Equal(t, "reg-cancelled", regs[2].ID)
}

func TestListAttendeesRestricted(t *testing.T) {
	s := seededStore()
	svc := newRegistrationService(s)
	s.putEvent(publishedEvent("evt-1", 10))

	_, err := svc.Register(context.Background(), testMember, "evt-1")
	require.NoError(t, err)

	attendees, err := svc.ListAttendees(context.Background(), testOrganizer, "evt-1")
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	assert.Equal(t, testMember.Email, attendees[0].UserEmail)

	_, err = svc.ListAttendees(context.Background(), testOtherOrganizer, "evt-1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListAttendees(context.Background(), testMember, "evt-1")
	assert.ErrorIs(t, err, ErrForbidden)
}
