package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo/parallel"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

type IssueInput struct {
	PhoneNumber string `validate:"required,e164phone"`
	ClientIP    string
}

func (s *Usecase) Issue(ctx context.Context, in IssueInput) error {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	ip := in.ClientIP
	if ip == "" {
		ip = "127.0.0.1"
	}

	if err := s.checkRateLimits(ctx, in.PhoneNumber, ip); err != nil {
		return err
	}

	code, err := s.codes.Generate(s.cfg.GetInt("modules.verification.code_length"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification code", "error", err)
		return goerror.NewServer(err)
	}

	digest, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification code", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.cfg.GetSecond("modules.verification.code_ttl_seconds")
	expiresAt := now.Add(ttl)

	if err := s.repoDB.UpsertRecord(ctx, entity.VerificationRecord{
		ID:           s.uid.Generate(),
		PhoneNumber:  in.PhoneNumber,
		HashedCode:   string(digest),
		ExpiresAt:    expiresAt,
		AttemptCount: 0,
		LastIssuedAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert verification record",
			"phone_number", in.PhoneNumber, "error", err)
		return goerror.NewServer(err)
	}

	// The stored record is harmless on its own, so a delivery failure is
	// surfaced without rolling it back; the record is claimed or expires.
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(ttl.Minutes()))
	if err := s.sender.Send(ctx, in.PhoneNumber, body); err != nil {
		slog.ErrorContext(ctx, "failed to send verification sms",
			"phone_number", in.PhoneNumber, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		PhoneNumber: in.PhoneNumber,
		RequestIP:   ip,
		ExpiresAt:   expiresAt,
		IssuedAt:    now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued event",
			"phone_number", in.PhoneNumber, "error", err)
	}

	return nil
}

type limitCheck struct {
	dimension string
	key       string
	limit     int64
	window    time.Duration
}

type limitOutcome struct {
	res ratelimit.Result
	err error
}

// checkRateLimits evaluates the three issuance quotas concurrently and
// combines them in a fixed order (ip, phone, phone-day) so the reported
// retry hint is deterministic. A counter failure fails closed.
func (s *Usecase) checkRateLimits(ctx context.Context, phoneNumber, ip string) error {
	checks := []limitCheck{
		{
			dimension: "ip",
			key:       "otp:ip:" + ip,
			limit:     s.cfg.GetInt64("modules.verification.rate_ip_limit"),
			window:    s.cfg.GetMinute("modules.verification.rate_ip_window_minutes"),
		},
		{
			dimension: "phone",
			key:       "otp:phone:" + phoneNumber,
			limit:     s.cfg.GetInt64("modules.verification.rate_phone_limit"),
			window:    s.cfg.GetMinute("modules.verification.rate_phone_window_minutes"),
		},
		{
			dimension: "phone_day",
			key:       "otp:phone-day:" + phoneNumber,
			limit:     s.cfg.GetInt64("modules.verification.rate_phone_daily_limit"),
			window:    s.cfg.GetHour("modules.verification.rate_phone_daily_window_hours"),
		},
	}

	outcomes := parallel.Map(checks, func(c limitCheck, _ int) limitOutcome {
		res, err := s.limiter.Check(ctx, c.key, c.limit, c.window)
		return limitOutcome{res: res, err: err}
	})

	for i, out := range outcomes {
		if out.err != nil {
			slog.ErrorContext(ctx, "rate limit check failed, failing closed",
				"dimension", checks[i].dimension, "error", out.err)
			return goerror.NewTooManyRequests(0)
		}
		if !out.res.Allowed {
			slog.WarnContext(ctx, "otp issuance throttled",
				"dimension", checks[i].dimension,
				"phone_number", phoneNumber,
				"retry_after", out.res.RetryAfter)
			return goerror.NewTooManyRequests(out.res.RetryAfter)
		}
	}

	return nil
}
