package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type VerifyTicketRequest struct {
	TicketCode string `json:"ticket_code"`
}

func (req *VerifyTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketCode, validation.Required, validation.Length(1, 200)),
	)
}

type WalkInRequest struct {
	EventID     string `json:"event_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (req *WalkInRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.DisplayName, validation.Length(0, 100)),
	)
}
