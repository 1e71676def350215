package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/goverify/internal/audit/entity"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
)

type ConsumeOTPVerifiedInput struct {
	PhoneNumber string `validate:"required,e164phone"`
	Outcome     string `validate:"required"`
	VerifiedAt  time.Time
}

func (s *Usecase) ConsumeOTPVerified(ctx context.Context, in ConsumeOTPVerifiedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPVerified")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	occurredAt := in.VerifiedAt
	if occurredAt.IsZero() {
		occurredAt = s.clock.Now()
	}

	if err := s.repoDB.CreateEvent(ctx, entity.AuditEvent{
		ID:          s.uid.Generate(),
		EventType:   entity.EventTypeOTPVerified,
		PhoneNumber: in.PhoneNumber,
		Outcome:     in.Outcome,
		OccurredAt:  occurredAt,
		CreatedAt:   s.clock.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create audit event",
			"event_type", entity.EventTypeOTPVerified, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
