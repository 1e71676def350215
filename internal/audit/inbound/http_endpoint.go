package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/goverify/internal/audit/entity"
	"github.com/shandysiswandi/goverify/internal/audit/usecase"
	"github.com/shandysiswandi/goverify/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the verification audit trail.
type HTTPEndpoint struct {
	uc uc
}

// ListVerifications lists recent verification audit events.
// @Summary List verification audit events
// @Description Returns recent issuance and verification events, newest first. Optionally filtered by phone number.
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param phone_number query string false "Filter by phone number (E.164)"
// @Param limit query int false "Maximum rows to return (1-100)"
// @Success 200 {object} router.successResponse{data=ListVerificationsResponse} "Audit events"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/audit/verifications [get]
func (h *HTTPEndpoint) ListVerifications(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListEvents(r.Context(), usecase.ListEventsInput{
		PhoneNumber: r.GetQuery("phone_number"),
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	return ListVerificationsResponse{
		Events: lo.Map(resp.Events, func(ev entity.AuditEvent, _ int) VerificationEventResponse {
			return VerificationEventResponse{
				ID:          ev.ID,
				EventType:   ev.EventType,
				PhoneNumber: ev.PhoneNumber,
				RequestIP:   ev.RequestIP,
				Outcome:     ev.Outcome,
				OccurredAt:  ev.OccurredAt,
			}
		}),
	}, nil
}
