package inbound

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shandysiswandi/goverify/internal/audit/usecase"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/messaging"
	"github.com/shandysiswandi/goverify/internal/pkg/uid"
	"github.com/shandysiswandi/goverify/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OTPIssuedAudit(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "OTPIssuedAudit")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp issued audit event")

	var payload event.OTPIssuedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued event", "error", err)
		return nil
	}

	if err := h.uc.ConsumeOTPIssued(ctx, usecase.ConsumeOTPIssuedInput{
		PhoneNumber: payload.PhoneNumber,
		RequestIP:   payload.RequestIP,
		IssuedAt:    time.Unix(payload.IssuedAt, 0),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued event", "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) OTPVerifiedAudit(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("audit.inbound.mq").Start(ctx, "OTPVerifiedAudit")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp verified audit event")

	var payload event.OTPVerifiedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp verified event", "error", err)
		return nil
	}

	if err := h.uc.ConsumeOTPVerified(ctx, usecase.ConsumeOTPVerifiedInput{
		PhoneNumber: payload.PhoneNumber,
		Outcome:     payload.Outcome,
		VerifiedAt:  time.Unix(payload.VerifiedAt, 0),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp verified event", "error", err)
		return err
	}

	return nil
}
