package inbound

// IssueOTPRequest is the payload for requesting a verification code.
type IssueOTPRequest struct {
	PhoneNumber string `json:"phone_number" example:"+12025550123"`
}

// IssueOTPResponse acknowledges issuance without echoing the code.
type IssueOTPResponse struct {
	Sent bool `json:"sent" example:"true"`
}

func (IssueOTPResponse) Message() string {
	return "verification code sent"
}

// VerifyOTPRequest is the payload for redeeming a verification code.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" example:"+12025550123"`
	OTP         string `json:"otp" example:"042137"`
}

// VerifyOTPResponse carries the access token issued on success.
type VerifyOTPResponse struct {
	AccessToken string `json:"access_token"`
}

func (VerifyOTPResponse) Message() string {
	return "phone number verified"
}
