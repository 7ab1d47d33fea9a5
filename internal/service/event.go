package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/repository"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrEventNotFound     = repository.ErrEventNotFound
	ErrInvalidTransition = repository.ErrInvalidTransition
	ErrInvalidTimeWindow = errors.New("event end time must be after start time")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	ListByStatus(ctx context.Context, status domain.EventStatus, limit, offset int) ([]domain.Event, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Event, int64, error)
	ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int64, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.EventStatus) (domain.Event, error)
	Delete(ctx context.Context, id string) error
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

// CreateEvent creates an event owned by the issuer. Admin-created events
// are published immediately; organizer-created events await admin approval.
func (s *EventService) CreateEvent(ctx context.Context, issuer domain.User, event domain.Event) (domain.Event, error) {
	if issuer.Role != domain.RoleAdmin && issuer.Role != domain.RoleOrganizer {
		return domain.Event{}, ErrForbidden
	}
	if !event.EndAt.After(event.StartAt) {
		return domain.Event{}, ErrInvalidTimeWindow
	}

	event.ID = uuid.NewString()
	event.OrganizerID = issuer.ID
	event.RegisteredCount = 0
	if issuer.Role == domain.RoleAdmin {
		event.Status = domain.EventPublished
	} else {
		event.Status = domain.EventPending
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.logAction(created.ID, issuer.ID, "CREATE_"+string(created.Status))

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

// ListPublished returns the public event list.
func (s *EventService) ListPublished(ctx context.Context, limit, offset int) ([]domain.Event, int64, error) {
	events, total, err := s.repo.ListByStatus(ctx, domain.EventPublished, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.ListByStatus -> %w", err)
	}

	return events, total, nil
}

// ListManaged returns the events the caller runs check-in for: their own
// events for organizers, every event for admins.
func (s *EventService) ListManaged(ctx context.Context, caller domain.User, limit, offset int) ([]domain.Event, int64, error) {
	if caller.Role == domain.RoleAdmin {
		events, total, err := s.repo.ListAll(ctx, limit, offset)
		if err != nil {
			return nil, 0, fmt.Errorf("s.repo.ListAll -> %w", err)
		}
		return events, total, nil
	}

	if caller.Role != domain.RoleOrganizer {
		return nil, 0, ErrForbidden
	}

	events, total, err := s.repo.ListByOrganizer(ctx, caller.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.ListByOrganizer -> %w", err)
	}

	return events, total, nil
}

// ListPending returns events awaiting approval. Admin only.
func (s *EventService) ListPending(ctx context.Context, caller domain.User, limit, offset int) ([]domain.Event, int64, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, 0, ErrForbidden
	}

	events, total, err := s.repo.ListByStatus(ctx, domain.EventPending, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.ListByStatus -> %w", err)
	}

	return events, total, nil
}

// ApproveEvent publishes a pending event. Admin only; events in any other
// status fail with ErrInvalidTransition.
func (s *EventService) ApproveEvent(ctx context.Context, caller domain.User, eventID string) (domain.Event, error) {
	if caller.Role != domain.RoleAdmin {
		return domain.Event{}, ErrForbidden
	}

	event, err := s.repo.UpdateStatus(ctx, eventID, domain.EventPending, domain.EventPublished)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	s.logAction(event.ID, caller.ID, "APPROVE")

	return event, nil
}

// RejectEvent rejects a pending event. Admin only.
func (s *EventService) RejectEvent(ctx context.Context, caller domain.User, eventID string) (domain.Event, error) {
	if caller.Role != domain.RoleAdmin {
		return domain.Event{}, ErrForbidden
	}

	event, err := s.repo.UpdateStatus(ctx, eventID, domain.EventPending, domain.EventRejected)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	s.logAction(event.ID, caller.ID, "REJECT")

	return event, nil
}

// UpdateEvent applies field updates. Lowering capacity below the current
// registered count is permitted and does not cancel anything.
func (s *EventService) UpdateEvent(ctx context.Context, caller domain.User, eventID string, updates domain.Event) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !event.ManageableBy(caller) {
		return domain.Event{}, ErrForbidden
	}
	if !updates.EndAt.After(updates.StartAt) {
		return domain.Event{}, ErrInvalidTimeWindow
	}

	updates.ID = event.ID
	updated, err := s.repo.Update(ctx, updates)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteEvent removes the event and all of its registrations.
func (s *EventService) DeleteEvent(ctx context.Context, caller domain.User, eventID string) error {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !event.ManageableBy(caller) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.logAction(eventID, caller.ID, "DELETE")

	return nil
}

func (s *EventService) logAction(eventID, actorID, action string) {
	zap.L().Info("event action",
		zap.String("event_id", eventID),
		zap.String("actor_id", actorID),
		zap.String("action", action),
		zap.Time("at", time.Now().UTC()),
	)
}
