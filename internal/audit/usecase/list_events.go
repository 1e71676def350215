package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/goverify/internal/audit/entity"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/jwt"
)

type ListEventsInput struct {
	PhoneNumber string `validate:"omitempty,e164phone"`
	Limit       int32  `validate:"omitempty,min=1,max=100"`
}

type ListEventsOutput struct {
	Events []entity.AuditEvent
}

func (s *Usecase) ListEvents(ctx context.Context, in ListEventsInput) (*ListEventsOutput, error) {
	ctx, span := s.startSpan(ctx, "ListEvents")
	defer span.End()

	if jwt.GetAuth(ctx) == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	limit := in.Limit
	if limit == 0 {
		limit = s.cfg.GetInt32("modules.audit.default_list_limit")
	}

	events, err := s.repoDB.ListEvents(ctx, entity.ListFilter{
		PhoneNumber: in.PhoneNumber,
		Limit:       limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list audit events", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListEventsOutput{Events: events}, nil
}
