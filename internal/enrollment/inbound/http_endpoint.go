package inbound

import (
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/enrollment/usecase"
	"github.com/shandysiswandi/mfarelay/internal/pkg/router"
)

// HTTPEndpoint exposes the enrollment relay over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// Check reports liveness. It ignores the request entirely.
func (h *HTTPEndpoint) Check() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(healthBody)); err != nil {
			slog.WarnContext(r.Context(), "failed to write health response", "error", err)
		}
	})
}

// InitiateEnrollment starts OTP enrollment for the bearer of the
// Authorization header and relays the provider's secret, continuation token
// and recovery codes.
func (h *HTTPEndpoint) InitiateEnrollment(r *router.Request) (any, error) {
	assoc, err := h.uc.InitiateEnrollment(r.Context(), usecase.InitiateEnrollmentInput{
		Credential: r.Credential(),
	})
	if err != nil {
		return nil, err
	}

	resp := InitiateEnrollmentResponse{Extra: assoc.Extra}
	resp.Secret, _ = assoc.Member(entity.MemberSecret)
	resp.MFAToken, _ = assoc.Member(entity.MemberOOBCode)
	resp.RecoveryCodes, _ = assoc.Member(entity.MemberRecoveryCodes)

	return resp, nil
}

// ConfirmEnrollment validates the OTP against the continuation token and
// relays the provider tokens.
func (h *HTTPEndpoint) ConfirmEnrollment(r *router.Request) (any, error) {
	var req ConfirmEnrollmentRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	grant, err := h.uc.ConfirmEnrollment(r.Context(), usecase.ConfirmEnrollmentInput{
		OTP:      string(req.OTP),
		MFAToken: req.MFAToken,
	})
	if err != nil {
		return nil, err
	}

	return ConfirmEnrollmentResponse{
		Success: true,
		Message: confirmedMessage,
		Tokens:  grant.Tokens,
	}, nil
}
