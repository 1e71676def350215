package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/goverify/internal/pkg/clock"
	"github.com/shandysiswandi/goverify/internal/pkg/config"
	"github.com/shandysiswandi/goverify/internal/pkg/hash"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/jwt"
	"github.com/shandysiswandi/goverify/internal/pkg/otpcode"
	"github.com/shandysiswandi/goverify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/goverify/internal/pkg/sms"
	"github.com/shandysiswandi/goverify/internal/pkg/uid"
	"github.com/shandysiswandi/goverify/internal/pkg/validator"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.opentelemetry.io/otel/trace"
)

// Verification outcomes recorded on published events.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeExpired  = "expired"
	OutcomeMismatch = "mismatch"
	OutcomeLocked   = "locked"
)

type OTPIssuedEvent struct {
	PhoneNumber string
	RequestIP   string
	ExpiresAt   time.Time
	IssuedAt    time.Time
}

type OTPVerifiedEvent struct {
	PhoneNumber string
	Outcome     string
	VerifiedAt  time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPVerified(ctx context.Context, msg OTPVerifiedEvent) error
}

type repoDB interface {
	UpsertRecord(ctx context.Context, in entity.VerificationRecord) error
	GetRecordByPhone(ctx context.Context, phoneNumber string) (*entity.VerificationRecord, error)
	IncrementAttempt(ctx context.Context, phoneNumber string) (int32, error)
	DeleteRecord(ctx context.Context, phoneNumber string) error
}

type limiter interface {
	Check(ctx context.Context, identifier string, limit int64, window time.Duration) (ratelimit.Result, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	limiter       limiter
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	codes         otpcode.Generator
	sender        sms.SMS
	uid           uid.NumberID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Limiter       limiter
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Codes         otpcode.Generator
	Sender        sms.SMS
	UID           uid.NumberID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		limiter:       dep.Limiter,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		codes:         dep.Codes,
		sender:        dep.Sender,
		uid:           dep.UID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}
