package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
)

type VerifyInput struct {
	PhoneNumber string `validate:"required,e164phone"`
	Code        string `validate:"required,otpdigits"`
}

type VerifyOutput struct {
	AccessToken string
}

// Verify checks a claimed code against the outstanding record.
//
// Not-found, expired, mismatch and locked all collapse to the same generic
// business error so callers cannot probe which phone numbers have codes
// outstanding; logs keep the distinction.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	record, err := s.repoDB.GetRecordByPhone(ctx, in.PhoneNumber)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no outstanding verification code", "phone_number", in.PhoneNumber)
		s.publishVerified(ctx, in.PhoneNumber, OutcomeNotFound)
		return nil, errInvalidCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get verification record",
			"phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	if record.Expired(s.clock.Now()) {
		slog.WarnContext(ctx, "verification code expired", "phone_number", in.PhoneNumber)
		s.deleteRecord(ctx, in.PhoneNumber)
		s.publishVerified(ctx, in.PhoneNumber, OutcomeExpired)
		return nil, errInvalidCode()
	}

	maxAttempts := s.cfg.GetInt32("modules.verification.max_attempts")
	if record.AttemptCount >= maxAttempts {
		slog.WarnContext(ctx, "verification record already locked", "phone_number", in.PhoneNumber)
		s.deleteRecord(ctx, in.PhoneNumber)
		s.publishVerified(ctx, in.PhoneNumber, OutcomeLocked)
		return nil, errInvalidCode()
	}

	if !s.hmac.Verify(record.HashedCode, in.Code) {
		attempts, err := s.repoDB.IncrementAttempt(ctx, in.PhoneNumber)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo increment attempt count",
				"phone_number", in.PhoneNumber, "error", err)
			return nil, goerror.NewServer(err)
		}

		outcome := OutcomeMismatch
		if attempts >= maxAttempts {
			slog.WarnContext(ctx, "verification attempt limit reached",
				"phone_number", in.PhoneNumber)
			s.deleteRecord(ctx, in.PhoneNumber)
			outcome = OutcomeLocked
		}

		s.publishVerified(ctx, in.PhoneNumber, outcome)
		return nil, errInvalidCode()
	}

	// Single-use consumption: the record must be gone before the caller is
	// told the code was accepted.
	if err := s.repoDB.DeleteRecord(ctx, in.PhoneNumber); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete verification record",
			"phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(in.PhoneNumber)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token",
			"phone_number", in.PhoneNumber, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.publishVerified(ctx, in.PhoneNumber, OutcomeSuccess)

	return &VerifyOutput{AccessToken: token}, nil
}

func errInvalidCode() error {
	return goerror.NewBusiness("Invalid verification code", goerror.CodeUnauthorized)
}

func (s *Usecase) deleteRecord(ctx context.Context, phoneNumber string) {
	if err := s.repoDB.DeleteRecord(ctx, phoneNumber); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete verification record",
			"phone_number", phoneNumber, "error", err)
	}
}

func (s *Usecase) publishVerified(ctx context.Context, phoneNumber, outcome string) {
	if err := s.repoMessaging.PublishOTPVerified(ctx, OTPVerifiedEvent{
		PhoneNumber: phoneNumber,
		Outcome:     outcome,
		VerifiedAt:  s.clock.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp verified event",
			"phone_number", phoneNumber, "error", err)
	}
}
