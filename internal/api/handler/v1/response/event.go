package response

import "github.com/eventpass/eventpass-api/internal/domain"

// EventList is the paginated event list envelope.
type EventList struct {
	Items  []domain.Event `json:"items"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Token is returned by login.
type Token struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
