package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/pkg/goerror"
	"github.com/shandysiswandi/mfarelay/internal/pkg/jwt"
	"go.opentelemetry.io/otel/codes"
)

type InitiateEnrollmentInput struct {
	// Credential is the caller's Authorization header value, forwarded as-is.
	Credential string
}

// InitiateEnrollment asks the provider to associate a new OTP authenticator
// for the caller identified by the credential.
func (s *Usecase) InitiateEnrollment(ctx context.Context, in InitiateEnrollmentInput) (*entity.Association, error) {
	ctx, span := s.startSpan(ctx, "InitiateEnrollment")
	defer span.End()

	if strings.TrimSpace(in.Credential) == "" {
		return nil, entity.ErrMissingCredential
	}

	subject := jwt.Subject(in.Credential)

	assoc, err := s.provider.Associate(ctx, in.Credential)
	if err != nil {
		s.countCall(ctx, entity.OpAssociate, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var uerr *entity.UpstreamError
		if errors.As(err, &uerr) {
			slog.ErrorContext(ctx, "failed to associate otp authenticator",
				"subject", subject,
				"status", uerr.StatusCode,
				"upstream_error", uerr.Code,
				"body", string(uerr.Body),
				"error", err,
			)
			return nil, goerror.NewServerWithDetails(err, entity.MsgInitiateFailed, uerr.Details())
		}

		slog.ErrorContext(ctx, "failed to associate otp authenticator", "subject", subject, "error", err)
		return nil, goerror.NewServerWithDetails(err, entity.MsgInitiateFailed, nil)
	}

	s.countCall(ctx, entity.OpAssociate, "success")
	slog.InfoContext(ctx, "otp authenticator associated", "subject", subject)

	return assoc, nil
}
