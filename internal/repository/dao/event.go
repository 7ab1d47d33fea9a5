package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Event struct {
	ID          string `gorm:"primaryKey"`
	OrganizerID string `gorm:"index;not null"`

	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text;not null"`
	Location    string `gorm:"size:200;not null"`

	StartAt time.Time `gorm:"index;not null"`
	EndAt   time.Time `gorm:"not null"`

	Capacity        int    `gorm:"not null"`
	RegisteredCount int    `gorm:"not null;default:0"`
	Status          string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id string) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// ListByStatus returns events with the given status, newest start first.
// An empty status lists all events.
func (d *EventDAO) ListByStatus(ctx context.Context, status string, limit, offset int) ([]Event, int64, error) {
	query := d.db.WithContext(ctx).Model(&Event{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []Event
	result := query.Order("start_at desc").Limit(limit).Offset(offset).Find(&events)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return events, total, nil
}

func (d *EventDAO) ListByOrganizer(ctx context.Context, organizerID string, limit, offset int) ([]Event, int64, error) {
	query := d.db.WithContext(ctx).Model(&Event{}).Where("organizer_id = ?", organizerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []Event
	result := query.Order("start_at desc").Limit(limit).Offset(offset).Find(&events)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return events, total, nil
}

// Update saves the mutable event fields. RegisteredCount and Status are
// owned by the registration transactions and the approval flow; they are
// never written here.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	var updated Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&updated, "id = ?", event.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		updated.Title = event.Title
		updated.Description = event.Description
		updated.Location = event.Location
		updated.StartAt = event.StartAt
		updated.EndAt = event.EndAt
		updated.Capacity = event.Capacity

		return tx.Save(&updated).Error
	})
	if err != nil {
		return Event{}, err
	}

	return updated, nil
}

// UpdateStatus transitions the event's status, but only from the expected
// starting status. Any other starting status fails with ErrInvalidTransition.
func (d *EventDAO) UpdateStatus(ctx context.Context, id, from, to string) (Event, error) {
	var event Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if event.Status != from {
			return ErrInvalidTransition
		}

		event.Status = to
		return tx.Save(&event).Error
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// Delete removes the event and all of its registrations in one transaction.
func (d *EventDAO) Delete(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if err := tx.Where("event_id = ?", id).Delete(&Registration{}).Error; err != nil {
			return err
		}

		return tx.Delete(&event).Error
	})
}
