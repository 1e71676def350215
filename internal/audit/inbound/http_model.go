package inbound

import "time"

// VerificationEventResponse is one audit row in the listing.
type VerificationEventResponse struct {
	ID          int64     `json:"id" example:"1971347783946997760"`
	EventType   string    `json:"event_type" example:"otp_issued"`
	PhoneNumber string    `json:"phone_number" example:"+12025550123"`
	RequestIP   string    `json:"request_ip,omitempty" example:"203.0.113.7"`
	Outcome     string    `json:"outcome,omitempty" example:"success"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ListVerificationsResponse wraps the audit listing.
type ListVerificationsResponse struct {
	Events []VerificationEventResponse `json:"events"`
}

func (ListVerificationsResponse) Message() string {
	return "verification audit events"
}
