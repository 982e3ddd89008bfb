package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/pkg/goerror"
	"go.opentelemetry.io/otel/codes"
)

type ConfirmEnrollmentInput struct {
	OTP      string `json:"otp" validate:"notblank"`
	MFAToken string `json:"mfa_token" validate:"notblank"`
}

// ConfirmEnrollment exchanges the OTP and continuation token for the
// provider's tokens, completing the enrollment.
func (s *Usecase) ConfirmEnrollment(ctx context.Context, in ConfirmEnrollmentInput) (*entity.Grant, error) {
	ctx, span := s.startSpan(ctx, "ConfirmEnrollment")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err, entity.MsgMissingParameters)
	}

	grant, err := s.provider.ExchangeOTP(ctx, entity.Confirmation{
		OTP:               in.OTP,
		ContinuationToken: in.MFAToken,
	})
	if err == nil {
		s.countCall(ctx, entity.OpExchangeOTP, "success")
		slog.InfoContext(ctx, "otp enrollment confirmed")
		return grant, nil
	}

	var uerr *entity.UpstreamError
	if errors.As(err, &uerr) && uerr.Code == entity.ErrorCodeInvalidGrant {
		s.countCall(ctx, entity.OpExchangeOTP, "rejected")
		slog.WarnContext(ctx, "otp rejected by provider", "status", uerr.StatusCode, "body", string(uerr.Body))
		return nil, entity.ErrInvalidOrExpiredOTP
	}

	s.countCall(ctx, entity.OpExchangeOTP, "error")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if uerr != nil {
		slog.ErrorContext(ctx, "failed to exchange otp",
			"status", uerr.StatusCode,
			"upstream_error", uerr.Code,
			"body", string(uerr.Body),
			"error", err,
		)
		return nil, goerror.NewServerWithDetails(err, entity.MsgConfirmFailed, uerr.Details())
	}

	slog.ErrorContext(ctx, "failed to exchange otp", "error", err)
	return nil, goerror.NewServerWithDetails(err, entity.MsgConfirmFailed, nil)
}
