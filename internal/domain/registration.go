package domain

import "time"

type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCheckedIn  RegistrationStatus = "checked_in"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// IsActive reports whether the registration holds a seat. Active
// registrations count against event capacity; cancelled ones do not.
func (s RegistrationStatus) IsActive() bool {
	return s == RegistrationRegistered || s == RegistrationCheckedIn
}

type Registration struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`

	Status     RegistrationStatus `json:"status"`
	TicketCode string             `json:"ticket_code"`
	CreatedAt  time.Time          `json:"created_at"`

	// Denormalized for ticket display.
	EventTitle   string    `json:"event_title"`
	EventStartAt time.Time `json:"event_start_at"`
}

// Attendee is a registration joined with the attendee's user details,
// as shown on the organizer console.
type Attendee struct {
	Registration
	UserDisplayName string `json:"user_display_name"`
	UserEmail       string `json:"user_email"`
}
