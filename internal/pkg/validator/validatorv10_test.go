package validator

import (
	"errors"
	"testing"
)

type issueRequest struct {
	PhoneNumber string `validate:"required,e164phone"`
}

type verifyRequest struct {
	PhoneNumber string `validate:"required,e164phone"`
	Code        string `validate:"required,otpdigits"`
}

func TestValidateE164Phone(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator returned error: %v", err)
	}

	valid := []string{"+12025550123", "+6281234567890", "+442071838750", "+15"}
	for _, phone := range valid {
		if err := v.Validate(issueRequest{PhoneNumber: phone}); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", phone, err)
		}
	}

	invalid := []string{"", "12025550123", "+0123456789", "+1", "+1202555x123", "+12345678901234567"}
	for _, phone := range invalid {
		err := v.Validate(issueRequest{PhoneNumber: phone})
		if err == nil {
			t.Errorf("Validate(%q) = nil, want error", phone)
			continue
		}

		var fieldErrs V10ValidationError
		if !errors.As(err, &fieldErrs) {
			t.Errorf("Validate(%q) error type = %T, want V10ValidationError", phone, err)
			continue
		}
		if _, ok := fieldErrs.Values()["phone_number"]; !ok {
			t.Errorf("Validate(%q) missing phone_number field detail: %v", phone, fieldErrs)
		}
	}
}

func TestValidateOTPDigits(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator returned error: %v", err)
	}

	if err := v.Validate(verifyRequest{PhoneNumber: "+12025550123", Code: "048392"}); err != nil {
		t.Fatalf("Validate valid code = %v, want nil", err)
	}

	for _, code := range []string{"", "123", "12345678901", "12a456"} {
		if err := v.Validate(verifyRequest{PhoneNumber: "+12025550123", Code: code}); err == nil {
			t.Errorf("Validate(code=%q) = nil, want error", code)
		}
	}
}
