package inbound

import (
	"context"

	"github.com/shandysiswandi/goverify/internal/pkg/router"
	"github.com/shandysiswandi/goverify/internal/verification/usecase"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) error
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/verification/otp", end.IssueOTP)
	r.POST("/api/v1/verification/otp/verify", end.VerifyOTP)
}
