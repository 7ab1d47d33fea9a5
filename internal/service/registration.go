package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/repository"
)

var (
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrAlreadyRegistered    = repository.ErrAlreadyRegistered
	ErrEventFull            = repository.ErrEventFull
	ErrEventNotPublished    = repository.ErrEventNotPublished
	ErrEventEnded           = repository.ErrEventEnded
	ErrTicketUsed           = repository.ErrTicketUsed
)

type RegistrationRepository interface {
	Register(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	Cancel(ctx context.Context, regID, userID string) error
	CheckIn(ctx context.Context, regID string) (domain.Registration, error)
	WalkIn(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	FindByTicketCode(ctx context.Context, code string) (domain.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Registration, error)
	ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error)
}

type RegistrationService struct {
	repo      RegistrationRepository
	eventRepo EventRepository
}

func NewRegistrationService(repo RegistrationRepository, eventRepo EventRepository) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		eventRepo: eventRepo,
	}
}

// Register signs the user up for an event. A cancelled registration for the
// same (event, user) pair is reactivated with its original ticket code; the
// capacity and duplicate checks run inside the repository's event-locked
// transaction.
func (s *RegistrationService) Register(ctx context.Context, user domain.User, eventID string) (domain.Registration, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	reg := domain.Registration{
		ID:           uuid.NewString(),
		EventID:      event.ID,
		UserID:       user.ID,
		TicketCode:   newTicketCode(event.ID, user.ID),
		EventTitle:   event.Title,
		EventStartAt: event.StartAt,
	}

	created, err := s.repo.Register(ctx, reg)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.Register -> %w", err)
	}

	return created, nil
}

// Cancel cancels the caller's own registration. Cancelling a checked-in
// ticket fails; cancelling an already cancelled one succeeds as a no-op.
func (s *RegistrationService) Cancel(ctx context.Context, user domain.User, regID string) error {
	if err := s.repo.Cancel(ctx, regID, user.ID); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotOwned) {
			return ErrForbidden
		}
		return fmt.Errorf("s.repo.Cancel -> %w", err)
	}

	return nil
}

// ListMine returns the caller's tickets, active ones first, newest first
// within each group.
func (s *RegistrationService) ListMine(ctx context.Context, user domain.User) ([]domain.Registration, error) {
	regs, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByUser -> %w", err)
	}

	sort.SliceStable(regs, func(i, j int) bool {
		iActive := regs[i].Status.IsActive()
		jActive := regs[j].Status.IsActive()
		if iActive != jActive {
			return iActive
		}
		return regs[i].CreatedAt.After(regs[j].CreatedAt)
	})

	return regs, nil
}

// ListAttendees returns an event's registrations with attendee details,
// newest first. Restricted to the event's organizer and admins.
func (s *RegistrationService) ListAttendees(ctx context.Context, caller domain.User, eventID string) ([]domain.Attendee, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	if !event.ManageableBy(caller) {
		return nil, ErrForbidden
	}

	attendees, err := s.repo.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListAttendees -> %w", err)
	}

	return attendees, nil
}

// newTicketCode builds a globally unique ticket code. The random suffix
// keeps codes unguessable; the unique index on ticket_code backs this up.
func newTicketCode(eventID, userID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("QR-%s-%s-%s", eventID, userID, suffix)
}

// walkInTicketCode marks on-site registrations with a distinct suffix.
func walkInTicketCode(eventID, userID string) string {
	return fmt.Sprintf("QR-%s-%s-WALKIN", eventID, userID)
}
