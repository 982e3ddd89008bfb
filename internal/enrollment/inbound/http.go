package inbound

import (
	"context"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/enrollment/usecase"
	"github.com/shandysiswandi/mfarelay/internal/pkg/router"
)

type uc interface {
	InitiateEnrollment(ctx context.Context, in usecase.InitiateEnrollmentInput) (*entity.Association, error)
	ConfirmEnrollment(ctx context.Context, in usecase.ConfirmEnrollmentInput) (*entity.Grant, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GETRaw("/check", end.Check())

	// MFA enrollment (OTP)
	r.POST("/initiate-enrollment", end.InitiateEnrollment)
	r.POST("/enroll-totp-Auth0", end.ConfirmEnrollment)
}
