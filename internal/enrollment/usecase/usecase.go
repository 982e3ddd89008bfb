package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/pkg/instrument"
	"github.com/shandysiswandi/mfarelay/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type authProvider interface {
	Associate(ctx context.Context, credential string) (*entity.Association, error)
	ExchangeOTP(ctx context.Context, in entity.Confirmation) (*entity.Grant, error)
}

type Usecase struct {
	provider  authProvider
	validator validator.Validator
	ins       instrument.Instrumentation
	calls     metric.Int64Counter
}

type Dependency struct {
	Provider   authProvider
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	calls, err := dep.Instrument.Meter("enrollment.usecase").Int64Counter(
		"mfa.upstream.calls",
		metric.WithDescription("Number of identity provider calls by operation and outcome"),
	)
	if err != nil {
		slog.Error("failed to create upstream call counter", "error", err)
	}

	return &Usecase{
		provider:  dep.Provider,
		validator: dep.Validator,
		ins:       dep.Instrument,
		calls:     calls,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("enrollment.usecase").Start(ctx, name)
}

func (s *Usecase) countCall(ctx context.Context, op, outcome string) {
	if s.calls == nil {
		return
	}
	s.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}
