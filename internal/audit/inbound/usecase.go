package inbound

import (
	"context"

	"github.com/shandysiswandi/goverify/internal/audit/usecase"
)

type uc interface {
	ConsumeOTPIssued(ctx context.Context, in usecase.ConsumeOTPIssuedInput) error
	ConsumeOTPVerified(ctx context.Context, in usecase.ConsumeOTPVerifiedInput) error
	ListEvents(ctx context.Context, in usecase.ListEventsInput) (*usecase.ListEventsOutput, error)
}
