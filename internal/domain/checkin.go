package domain

// CheckInReason classifies why a verification or walk-in attempt did not
// result in a fresh check-in.
type CheckInReason string

const (
	ReasonInvalidTicket     CheckInReason = "invalid_ticket"
	ReasonForbidden         CheckInReason = "forbidden"
	ReasonAlreadyUsed       CheckInReason = "already_used"
	ReasonCancelled         CheckInReason = "cancelled"
	ReasonEventNotPublished CheckInReason = "event_not_published"
	ReasonEventFull         CheckInReason = "event_full"
	ReasonAlreadyCheckedIn  CheckInReason = "already_checked_in"
)

// CheckInResult is the outcome of verifyTicket or a walk-in registration.
// Failures are data, not errors: the console renders them to the verifier.
type CheckInResult struct {
	Success      bool          `json:"success"`
	Reason       CheckInReason `json:"reason,omitempty"`
	Message      string        `json:"message"`
	Registration *Registration `json:"registration,omitempty"`
}
