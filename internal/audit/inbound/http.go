package inbound

import (
	"github.com/shandysiswandi/goverify/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// need authenticated
	r.GET("/api/v1/audit/verifications", end.ListVerifications)
}
