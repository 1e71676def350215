package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/goverify/internal/audit/entity"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
)

type ConsumeOTPIssuedInput struct {
	PhoneNumber string `validate:"required,e164phone"`
	RequestIP   string
	IssuedAt    time.Time
}

func (s *Usecase) ConsumeOTPIssued(ctx context.Context, in ConsumeOTPIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	occurredAt := in.IssuedAt
	if occurredAt.IsZero() {
		occurredAt = s.clock.Now()
	}

	if err := s.repoDB.CreateEvent(ctx, entity.AuditEvent{
		ID:          s.uid.Generate(),
		EventType:   entity.EventTypeOTPIssued,
		PhoneNumber: in.PhoneNumber,
		RequestIP:   in.RequestIP,
		OccurredAt:  occurredAt,
		CreatedAt:   s.clock.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create audit event",
			"event_type", entity.EventTypeOTPIssued, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
