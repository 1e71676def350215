package inbound

import (
	"github.com/shandysiswandi/goverify/internal/pkg/router"
	"github.com/shandysiswandi/goverify/internal/verification/usecase"
)

// HTTPEndpoint exposes HTTP handlers for the phone verification workflow.
type HTTPEndpoint struct {
	uc uc
}

// IssueOTP sends a one-time verification code to a phone number.
// @Summary Request verification code
// @Description Issues a short-lived single-use code and delivers it by SMS. The code is never echoed back.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body IssueOTPRequest true "Issuance payload"
// @Success 200 {object} router.successResponse{data=IssueOTPResponse} "Acknowledgment"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/otp [post]
func (h *HTTPEndpoint) IssueOTP(r *router.Request) (any, error) {
	var req IssueOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Issue(r.Context(), usecase.IssueInput{
		PhoneNumber: req.PhoneNumber,
		ClientIP:    r.RemoteAddr,
	}); err != nil {
		return nil, err
	}

	return IssueOTPResponse{Sent: true}, nil
}

// VerifyOTP redeems a verification code and returns an access token.
// @Summary Verify phone number
// @Description Checks the claimed code against the outstanding record. All rejection reasons collapse to one generic error.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=VerifyOTPResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid verification code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/verification/otp/verify [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		PhoneNumber: req.PhoneNumber,
		Code:        req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{AccessToken: resp.AccessToken}, nil
}
