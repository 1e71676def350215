package event

const OTPVerifiedDestination string = "otp_verified"
const OTPVerifiedDestinationConsumerAudit string = "otp_verified_audit"

type OTPVerifiedMessage struct {
	PhoneNumber string `json:"phone_number"`
	Outcome     string `json:"outcome"`
	VerifiedAt  int64  `json:"verified_at"`
}
