package entity

import "time"

// VerificationRecord is the outstanding one-time code for a phone number.
//
// At most one live record exists per phone number; a new issuance fully
// replaces the previous one.
type VerificationRecord struct {
	ID           int64
	PhoneNumber  string
	HashedCode   string
	ExpiresAt    time.Time
	AttemptCount int32
	LastIssuedAt time.Time
}

// Expired reports whether the record is past its expiry at the given time.
func (r VerificationRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
