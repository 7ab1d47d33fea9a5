package repository

import (
	"context"
	"fmt"

	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/repository/dao"
)

var (
	ErrEventNotFound     = dao.ErrEventNotFound
	ErrInvalidTransition = dao.ErrInvalidTransition
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id string) (dao.Event, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]dao.Event, int64, error)
	ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]dao.Event, int64, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	UpdateStatus(ctx context.Context, id, from, to string) (dao.Event, error)
	Delete(ctx context.Context, id string) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) ListByStatus(ctx context.Context, status domain.EventStatus, limit, offset int) ([]domain.Event, int64, error) {
	found, total, err := r.dao.ListByStatus(ctx, string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.ListByStatus -> %w", err)
	}

	return r.daosToDomain(found), total, nil
}

func (r *EventRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Event, int64, error) {
	found, total, err := r.dao.ListByStatus(ctx, "", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.ListByStatus -> %w", err)
	}

	return r.daosToDomain(found), total, nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]domain.Event, int64, error) {
	found, total, err := r.dao.ListByOrganizer(ctx, organizerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.ListByOrganizer -> %w", err)
	}

	return r.daosToDomain(found), total, nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id string, from, to domain.EventStatus) (domain.Event, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(from), string(to))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:              e.ID,
		OrganizerID:     e.OrganizerID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		Capacity:        e.Capacity,
		RegisteredCount: e.RegisteredCount,
		Status:          string(e.Status),
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:              e.ID,
		OrganizerID:     e.OrganizerID,
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		Capacity:        e.Capacity,
		RegisteredCount: e.RegisteredCount,
		Status:          domain.EventStatus(e.Status),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	out := make([]domain.Event, len(events))
	for i, e := range events {
		out[i] = r.daoToDomain(e)
	}
	return out
}
