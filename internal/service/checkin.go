package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/repository"
)

// CheckInService implements ticket verification and walk-in registration
// for the organizer console. Failed attempts are reported as CheckInResult
// values so the console can render them; only infrastructure failures come
// back as errors.
type CheckInService struct {
	repo      RegistrationRepository
	eventRepo EventRepository
	userRepo  UserRepository
}

func NewCheckInService(repo RegistrationRepository, eventRepo EventRepository, userRepo UserRepository) *CheckInService {
	return &CheckInService{
		repo:      repo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
	}
}

// Verify checks a presented ticket code and, when valid, transitions the
// registration to checked_in. Verifying the same code again deterministically
// reports the ticket as already used; the transition is never repeated.
func (s *CheckInService) Verify(ctx context.Context, verifier domain.User, ticketCode string) (domain.CheckInResult, error) {
	reg, err := s.repo.FindByTicketCode(ctx, ticketCode)
	if err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return domain.CheckInResult{
				Success: false,
				Reason:  domain.ReasonInvalidTicket,
				Message: "Invalid ticket: code not found",
			}, nil
		}
		return domain.CheckInResult{}, fmt.Errorf("s.repo.FindByTicketCode -> %w", err)
	}

	event, err := s.eventRepo.FindByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.CheckInResult{
				Success: false,
				Reason:  domain.ReasonInvalidTicket,
				Message: "Invalid ticket: event data missing",
			}, nil
		}
		return domain.CheckInResult{}, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	// A verifier who doesn't run this event learns nothing about the ticket.
	if !event.ManageableBy(verifier) {
		return domain.CheckInResult{
			Success: false,
			Reason:  domain.ReasonForbidden,
			Message: "This ticket belongs to an event managed by another organizer",
		}, nil
	}

	if event.Status != domain.EventPublished {
		return domain.CheckInResult{
			Success: false,
			Reason:  domain.ReasonEventNotPublished,
			Message: "Event is not published; tickets cannot be verified",
		}, nil
	}

	checked, err := s.repo.CheckIn(ctx, reg.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketUsed):
			return domain.CheckInResult{
				Success:      false,
				Reason:       domain.ReasonAlreadyUsed,
				Message:      "Ticket already used / checked in",
				Registration: &checked,
			}, nil
		case errors.Is(err, repository.ErrTicketCancelled):
			return domain.CheckInResult{
				Success:      false,
				Reason:       domain.ReasonCancelled,
				Message:      "Ticket was cancelled",
				Registration: &checked,
			}, nil
		}
		return domain.CheckInResult{}, fmt.Errorf("s.repo.CheckIn -> %w", err)
	}

	return domain.CheckInResult{
		Success:      true,
		Message:      "Check-in successful",
		Registration: &checked,
	}, nil
}

// WalkIn registers an attendee on site and checks them in immediately.
// The capacity check runs before any user record is created, so a full
// event never leaves a stray user behind.
func (s *CheckInService) WalkIn(ctx context.Context, verifier domain.User, eventID, email, displayName string) (domain.CheckInResult, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return domain.CheckInResult{
				Success: false,
				Reason:  domain.ReasonInvalidTicket,
				Message: "Event not found",
			}, nil
		}
		return domain.CheckInResult{}, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	if !event.ManageableBy(verifier) {
		return domain.CheckInResult{
			Success: false,
			Reason:  domain.ReasonForbidden,
			Message: "You do not manage this event",
		}, nil
	}

	if event.Status != domain.EventPublished {
		return domain.CheckInResult{
			Success: false,
			Reason:  domain.ReasonEventNotPublished,
			Message: "Event is not published",
		}, nil
	}

	if event.IsFull() {
		return domain.CheckInResult{
			Success: false,
			Reason:  domain.ReasonEventFull,
			Message: "Event is at full capacity",
		}, nil
	}

	user, err := s.resolveAttendee(ctx, email, displayName)
	if err != nil {
		return domain.CheckInResult{}, fmt.Errorf("s.resolveAttendee -> %w", err)
	}

	reg := domain.Registration{
		ID:           uuid.NewString(),
		EventID:      event.ID,
		UserID:       user.ID,
		TicketCode:   walkInTicketCode(event.ID, user.ID),
		EventTitle:   event.Title,
		EventStartAt: event.StartAt,
	}

	created, err := s.repo.WalkIn(ctx, reg)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketUsed):
			return domain.CheckInResult{
				Success:      false,
				Reason:       domain.ReasonAlreadyCheckedIn,
				Message:      "User already checked in",
				Registration: &created,
			}, nil
		case errors.Is(err, repository.ErrEventFull):
			return domain.CheckInResult{
				Success: false,
				Reason:  domain.ReasonEventFull,
				Message: "Event is at full capacity",
			}, nil
		case errors.Is(err, repository.ErrEventNotPublished):
			return domain.CheckInResult{
				Success: false,
				Reason:  domain.ReasonEventNotPublished,
				Message: "Event is not published",
			}, nil
		}
		return domain.CheckInResult{}, fmt.Errorf("s.repo.WalkIn -> %w", err)
	}

	message := "Walk-in registered & checked in"
	if created.ID != reg.ID {
		message = "Existing registration checked in"
	}

	return domain.CheckInResult{
		Success:      true,
		Message:      message,
		Registration: &created,
	}, nil
}

// resolveAttendee finds the attendee by email or creates a member account
// for them. New accounts get the email's local part as display name and an
// unusable random password until the attendee resets it.
func (s *CheckInService) resolveAttendee(ctx context.Context, email, displayName string) (domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("s.userRepo.FindByEmail -> %w", err)
	}

	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.userRepo.Create(ctx, domain.User{
		ID:          uuid.NewString(),
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
		Role:        domain.RoleMember,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.userRepo.Create -> %w", err)
	}

	return created, nil
}
