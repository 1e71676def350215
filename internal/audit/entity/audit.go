package entity

import "time"

// Event types recorded in the audit trail.
const (
	EventTypeOTPIssued   = "otp_issued"
	EventTypeOTPVerified = "otp_verified"
)

// AuditEvent is one recorded verification event.
//
// Rows never hold codes or digests, only the fact that something happened.
type AuditEvent struct {
	ID          int64
	EventType   string
	PhoneNumber string
	RequestIP   string
	Outcome     string
	OccurredAt  time.Time
	CreatedAt   time.Time
}
