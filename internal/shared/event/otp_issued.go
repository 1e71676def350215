package event

const OTPIssuedDestination string = "otp_issued"
const OTPIssuedDestinationConsumerAudit string = "otp_issued_audit"

type OTPIssuedMessage struct {
	PhoneNumber string `json:"phone_number"`
	RequestIP   string `json:"request_ip"`
	ExpiresAt   int64  `json:"expires_at"`
	IssuedAt    int64  `json:"issued_at"`
}
