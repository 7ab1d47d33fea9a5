package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationNotOwned = errors.New("registration belongs to another user")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrEventFull            = errors.New("event is at full capacity")
	ErrEventNotPublished    = errors.New("event is not published")
	ErrEventEnded           = errors.New("event has already ended")
	ErrTicketUsed           = errors.New("ticket has already been checked in")
	ErrTicketCancelled      = errors.New("ticket was cancelled")
)

type Registration struct {
	ID      string `gorm:"primaryKey"`
	EventID string `gorm:"not null;index:idx_event_user,unique"`
	UserID  string `gorm:"not null;index:idx_event_user,unique"`

	Status     string `gorm:"not null"`
	TicketCode string `gorm:"uniqueIndex;not null"`

	// Denormalized for ticket display.
	EventTitle   string    `gorm:"size:200;not null"`
	EventStartAt time.Time `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// Each mutating method below runs as one transaction that locks the event
// row before touching any registration row. The lock serializes the
// read-check-write sequence on (registered_count, registrations), so two
// concurrent registrations cannot both pass the capacity check.
// Lock order is always event first, then registration.

// Register creates a registration for (event, user) or reactivates a
// cancelled one. The caller provides the record to insert; on reactivation
// the existing record and ticket code are kept and created_at is reset.
func (d *RegistrationDAO) Register(ctx context.Context, reg Registration) (Registration, error) {
	var out Registration

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", reg.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if event.Status != "published" {
			return ErrEventNotPublished
		}
		if event.EndAt.Before(time.Now()) {
			return ErrEventEnded
		}

		var existing Registration
		err := tx.First(&existing, "event_id = ? AND user_id = ?", reg.EventID, reg.UserID).Error
		switch {
		case err == nil:
			if existing.Status != "cancelled" {
				return ErrAlreadyRegistered
			}

			if event.RegisteredCount >= event.Capacity {
				return ErrEventFull
			}

			// Reactivate: same record, same ticket code, fresh timestamp.
			existing.Status = "registered"
			existing.CreatedAt = time.Now().UTC()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			out = existing

		case errors.Is(err, gorm.ErrRecordNotFound):
			if event.RegisteredCount >= event.Capacity {
				return ErrEventFull
			}

			reg.Status = "registered"
			reg.CreatedAt = time.Now().UTC()
			if err := tx.Create(&reg).Error; err != nil {
				return err
			}
			out = reg

		default:
			return err
		}

		event.RegisteredCount++
		return tx.Save(&event).Error
	})
	if err != nil {
		return Registration{}, err
	}

	return out, nil
}

// Cancel marks the user's registration cancelled and releases its seat.
// Cancelling an already cancelled registration is a no-op.
func (d *RegistrationDAO) Cancel(ctx context.Context, regID, userID string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Read the registration without a lock to learn its event, then
		// take locks in the canonical order.
		var peek Registration
		if err := tx.First(&peek, "id = ?", regID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}

		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", peek.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		var reg Registration
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reg, "id = ?", regID).Error; err != nil {
			return err
		}

		if reg.UserID != userID {
			return ErrRegistrationNotOwned
		}
		if reg.Status == "checked_in" {
			return ErrTicketUsed
		}
		if reg.Status == "cancelled" {
			return nil
		}

		reg.Status = "cancelled"
		if err := tx.Save(&reg).Error; err != nil {
			return err
		}

		if event.RegisteredCount > 0 {
			event.RegisteredCount--
		}
		return tx.Save(&event).Error
	})
}

// CheckIn transitions a registration to checked_in. The row lock makes the
// transition idempotent under concurrent verification: the second caller
// observes checked_in and gets ErrTicketUsed.
func (d *RegistrationDAO) CheckIn(ctx context.Context, regID string) (Registration, error) {
	var reg Registration

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reg, "id = ?", regID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}

		switch reg.Status {
		case "checked_in":
			return ErrTicketUsed
		case "cancelled":
			return ErrTicketCancelled
		}

		reg.Status = "checked_in"
		return tx.Save(&reg).Error
	})
	if err != nil {
		return reg, err
	}

	return reg, nil
}

// WalkIn records an on-site registration with immediate check-in. The
// caller provides the record (ID and ticket code) to insert when no prior
// registration exists for (event, user).
func (d *RegistrationDAO) WalkIn(ctx context.Context, reg Registration) (Registration, error) {
	var out Registration

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", reg.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if event.Status != "published" {
			return ErrEventNotPublished
		}

		var existing Registration
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "event_id = ? AND user_id = ?", reg.EventID, reg.UserID).Error
		switch {
		case err == nil:
			if existing.Status == "checked_in" {
				out = existing
				return ErrTicketUsed
			}

			if existing.Status == "cancelled" {
				if event.RegisteredCount >= event.Capacity {
					return ErrEventFull
				}
				event.RegisteredCount++
			}

			existing.Status = "checked_in"
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			out = existing

		case errors.Is(err, gorm.ErrRecordNotFound):
			if event.RegisteredCount >= event.Capacity {
				return ErrEventFull
			}

			reg.Status = "checked_in"
			reg.CreatedAt = time.Now().UTC()
			if err := tx.Create(&reg).Error; err != nil {
				return err
			}
			event.RegisteredCount++
			out = reg

		default:
			return err
		}

		return tx.Save(&event).Error
	})
	if err != nil {
		return out, err
	}

	return out, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByTicketCode(ctx context.Context, code string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "ticket_code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByEventAndUser(ctx context.Context, eventID, userID string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "event_id = ? AND user_id = ?", eventID, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) ListByUser(ctx context.Context, userID string) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

// AttendeeRow is a registration joined with the attendee's user record.
type AttendeeRow struct {
	Registration
	UserDisplayName string
	UserEmail       string
}

func (d *RegistrationDAO) ListByEventWithUsers(ctx context.Context, eventID string) ([]AttendeeRow, error) {
	var rows []AttendeeRow

	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Select("registrations.*, users.display_name as user_display_name, users.email as user_email").
		Joins("JOIN users ON users.id = registrations.user_id").
		Where("registrations.event_id = ?", eventID).
		Order("registrations.created_at desc").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// CountActiveByEvent counts registrations holding a seat. Used to audit the
// registered_count invariant.
func (d *RegistrationDAO) CountActiveByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("event_id = ? AND status IN ?", eventID, []string{"registered", "checked_in"}).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
