package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&req.StartAt, validation.Required),
		validation.Field(&req.EndAt, validation.Required),
		validation.Field(&req.Location, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1)),
	)
}

// UpdateEventRequest carries the full set of editable fields. Capacity may
// be lowered below the current registered count; existing registrations
// are kept.
type UpdateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&req.StartAt, validation.Required),
		validation.Field(&req.EndAt, validation.Required),
		validation.Field(&req.Location, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1)),
	)
}
