package domain

import "time"

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventPublished EventStatus = "published"
	EventRejected  EventStatus = "rejected"
)

type Event struct {
	ID              string      `json:"id"`
	OrganizerID     string      `json:"organizer_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	StartAt         time.Time   `json:"start_at"`
	EndAt           time.Time   `json:"end_at"`
	Location        string      `json:"location"`
	Capacity        int         `json:"capacity"`
	RegisteredCount int         `json:"registered_count"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// IsFull reports whether no seats remain.
func (e *Event) IsFull() bool {
	return e.RegisteredCount >= e.Capacity
}

// Remaining returns the number of available seats, never negative.
func (e *Event) Remaining() int {
	if e.RegisteredCount >= e.Capacity {
		return 0
	}
	return e.Capacity - e.RegisteredCount
}

// HasEnded reports whether the event's end time has passed.
func (e *Event) HasEnded(now time.Time) bool {
	return e.EndAt.Before(now)
}

// ManageableBy reports whether the user may update, delete, or run
// check-in for this event: admins always, organizers only for their own.
func (e *Event) ManageableBy(user User) bool {
	if user.Role == RoleAdmin {
		return true
	}
	return user.Role == RoleOrganizer && e.OrganizerID == user.ID
}
