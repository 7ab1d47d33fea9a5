package service

import (
	"context"
	"sync"
	"time"

	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/repository"
)

// memStore is a shared in-memory backing store for the repository fakes.
// It mirrors the DAO's transactional semantics under a single mutex, using
// the same sentinel errors, so service tests exercise the real error paths.
type memStore struct {
	mu     sync.Mutex
	users  map[string]domain.User
	events map[string]domain.Event
	regs   map[string]domain.Registration
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]domain.User),
		events: make(map[string]domain.Event),
		regs:   make(map[string]domain.Registration),
	}
}

func (s *memStore) putUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memStore) putEvent(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
}

func (s *memStore) putRegistration(r domain.Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[r.ID] = r
}

func (s *memStore) event(id string) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func (s *memStore) registration(id string) domain.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[id]
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type fakeUserRepo struct {
	s *memStore
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	user, ok := f.s.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, user := range f.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, existing := range f.s.users {
		if existing.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	user.CreatedAt = time.Now().UTC()
	f.s.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	users := make([]domain.User, 0, len(f.s.users))
	for _, user := range f.s.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id string, role domain.UserRole) (domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	user, ok := f.s.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	user.Role = role
	f.s.users[id] = user
	return user, nil
}

type fakeEventRepo struct {
	s *memStore
}

func (f *fakeEventRepo) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	event.CreatedAt = time.Now().UTC()
	f.s.events[event.ID] = event
	return event, nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id string) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	event, ok := f.s.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeEventRepo) ListByStatus(_ context.Context, status domain.EventStatus, _, _ int) ([]domain.Event, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var events []domain.Event
	for _, event := range f.s.events {
		if event.Status == status {
			events = append(events, event)
		}
	}
	return events, int64(len(events)), nil
}

func (f *fakeEventRepo) ListAll(_ context.Context, _, _ int) ([]domain.Event, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var events []domain.Event
	for _, event := range f.s.events {
		events = append(events, event)
	}
	return events, int64(len(events)), nil
}

func (f *fakeEventRepo) ListByOrganizer(_ context.Context, organizerID string, _, _ int) ([]domain.Event, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var events []domain.Event
	for _, event := range f.s.events {
		if event.OrganizerID == organizerID {
			events = append(events, event)
		}
	}
	return events, int64(len(events)), nil
}

func (f *fakeEventRepo) Update(_ context.Context, event domain.Event) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	existing, ok := f.s.events[event.ID]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	existing.Title = event.Title
	existing.Description = event.Description
	existing.Location = event.Location
	existing.StartAt = event.StartAt
	existing.EndAt = event.EndAt
	existing.Capacity = event.Capacity
	f.s.events[event.ID] = existing
	return existing, nil
}

func (f *fakeEventRepo) UpdateStatus(_ context.Context, id string, from, to domain.EventStatus) (domain.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	event, ok := f.s.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	if event.Status != from {
		return domain.Event{}, repository.ErrInvalidTransition
	}

	event.Status = to
	f.s.events[id] = event
	return event, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	if _, ok := f.s.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	for regID, reg := range f.s.regs {
		if reg.EventID == id {
			delete(f.s.regs, regID)
		}
	}
	delete(f.s.events, id)
	return nil
}

type fakeRegistrationRepo struct {
	s *memStore
}

func (f *fakeRegistrationRepo) Register(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	event, ok := f.s.events[reg.EventID]
	if !ok {
		return domain.Registration{}, repository.ErrEventNotFound
	}
	if event.Status != domain.EventPublished {
		return domain.Registration{}, repository.ErrEventNotPublished
	}
	if event.HasEnded(time.Now()) {
		return domain.Registration{}, repository.ErrEventEnded
	}

	if existing, ok := f.findByEventAndUser(reg.EventID, reg.UserID); ok {
		if existing.Status != domain.RegistrationCancelled {
			return domain.Registration{}, repository.ErrAlreadyRegistered
		}
		if event.IsFull() {
			return domain.Registration{}, repository.ErrEventFull
		}

		existing.Status = domain.RegistrationRegistered
		existing.CreatedAt = time.Now().UTC()
		f.s.regs[existing.ID] = existing
		event.RegisteredCount++
		f.s.events[event.ID] = event
		return existing, nil
	}

	if event.IsFull() {
		return domain.Registration{}, repository.ErrEventFull
	}

	reg.Status = domain.RegistrationRegistered
	reg.CreatedAt = time.Now().UTC()
	f.s.regs[reg.ID] = reg
	event.RegisteredCount++
	f.s.events[event.ID] = event
	return reg, nil
}

func (f *fakeRegistrationRepo) Cancel(_ context.Context, regID, userID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	reg, ok := f.s.regs[regID]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	if reg.UserID != userID {
		return repository.ErrRegistrationNotOwned
	}
	if reg.Status == domain.RegistrationCheckedIn {
		return repository.ErrTicketUsed
	}
	if reg.Status == domain.RegistrationCancelled {
		return nil
	}

	reg.Status = domain.RegistrationCancelled
	f.s.regs[regID] = reg

	event := f.s.events[reg.EventID]
	if event.RegisteredCount > 0 {
		event.RegisteredCount--
	}
	f.s.events[event.ID] = event
	return nil
}

func (f *fakeRegistrationRepo) CheckIn(_ context.Context, regID string) (domain.Registration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	reg, ok := f.s.regs[regID]
	if !ok {
		return domain.Registration{}, repository.ErrRegistrationNotFound
	}

	switch reg.Status {
	case domain.RegistrationCheckedIn:
		return reg, repository.ErrTicketUsed
	case domain.RegistrationCancelled:
		return reg, repository.ErrTicketCancelled
	}

	reg.Status = domain.RegistrationCheckedIn
	f.s.regs[regID] = reg
	return reg, nil
}

func (f *fakeRegistrationRepo) WalkIn(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	event, ok := f.s.events[reg.EventID]
	if !ok {
		return domain.Registration{}, repository.ErrEventNotFound
	}
	if event.Status != domain.EventPublished {
		return domain.Registration{}, repository.ErrEventNotPublished
	}

	if existing, ok := f.findByEventAndUser(reg.EventID, reg.UserID); ok {
		if existing.Status == domain.RegistrationCheckedIn {
			return existing, repository.ErrTicketUsed
		}
		if existing.Status == domain.RegistrationCancelled {
			if event.IsFull() {
				return domain.Registration{}, repository.ErrEventFull
			}
			event.RegisteredCount++
		}

		existing.Status = domain.RegistrationCheckedIn
		f.s.regs[existing.ID] = existing
		f.s.events[event.ID] = event
		return existing, nil
	}

	if event.IsFull() {
		return domain.Registration{}, repository.ErrEventFull
	}

	reg.Status = domain.RegistrationCheckedIn
	reg.CreatedAt = time.Now().UTC()
	f.s.regs[reg.ID] = reg
	event.RegisteredCount++
	f.s.events[event.ID] = event
	return reg, nil
}

func (f *fakeRegistrationRepo) FindByTicketCode(_ context.Context, code string) (domain.Registration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, reg := range f.s.regs {
		if reg.TicketCode == code {
			return reg, nil
		}
	}
	return domain.Registration{}, repository.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) ListByUser(_ context.Context, userID string) ([]domain.Registration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var regs []domain.Registration
	for _, reg := range f.s.regs {
		if reg.UserID == userID {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

func (f *fakeRegistrationRepo) ListAttendees(_ context.Context, eventID string) ([]domain.Attendee, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var attendees []domain.Attendee
	for _, reg := range f.s.regs {
		if reg.EventID != eventID {
			continue
		}
		user := f.s.users[reg.UserID]
		attendees = append(attendees, domain.Attendee{
			Registration:    reg,
			UserDisplayName: user.DisplayName,
			UserEmail:       user.Email,
		})
	}
	return attendees, nil
}

// findByEventAndUser must be called with the store lock held.
func (f *fakeRegistrationRepo) findByEventAndUser(eventID, userID string) (domain.Registration, bool) {
	for _, reg := range f.s.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			return reg, true
		}
	}
	return domain.Registration{}, false
}

// Test fixtures shared across the service tests.

var (
	testAdmin = domain.User{
		ID:          "admin-1",
		Email:       "admin@example.com",
		DisplayName: "Admin",
		Role:        domain.RoleAdmin,
	}
	testOrganizer = domain.User{
		ID:          "org-1",
		Email:       "organizer@example.com",
		DisplayName: "Organizer",
		Role:        domain.RoleOrganizer,
	}
	testOtherOrganizer = domain.User{
		ID:          "org-2",
		Email:       "organizer2@example.com",
		DisplayName: "Other Organizer",
		Role:        domain.RoleOrganizer,
	}
	testMember = domain.User{
		ID:          "member-1",
		Email:       "member@example.com",
		DisplayName: "Member",
		Role:        domain.RoleMember,
	}
	testOtherMember = domain.User{
		ID:          "member-2",
		Email:       "member2@example.com",
		DisplayName: "Other Member",
		Role:        domain.RoleMember,
	}
)

func seededStore() *memStore {
	s := newMemStore()
	for _, u := range []domain.User{testAdmin, testOrganizer, testOtherOrganizer, testMember, testOtherMember} {
		s.putUser(u)
	}
	return s
}

func publishedEvent(id string, capacity int) domain.Event {
	return domain.Event{
		ID:          id,
		OrganizerID: testOrganizer.ID,
		Title:       "Tech Meetup",
		Description: "Monthly meetup",
		Location:    "Main Hall",
		StartAt:     time.Now().Add(24 * time.Hour),
		EndAt:       time.Now().Add(27 * time.Hour),
		Capacity:    capacity,
		Status:      domain.EventPublished,
	}
}
