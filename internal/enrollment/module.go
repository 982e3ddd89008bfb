package enrollment

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/inbound"
	"github.com/shandysiswandi/mfarelay/internal/enrollment/outbound/auth0"
	"github.com/shandysiswandi/mfarelay/internal/enrollment/outbound/sandbox"
	"github.com/shandysiswandi/mfarelay/internal/enrollment/usecase"
	"github.com/shandysiswandi/mfarelay/internal/pkg/clock"
	"github.com/shandysiswandi/mfarelay/internal/pkg/config"
	"github.com/shandysiswandi/mfarelay/internal/pkg/goroutine"
	"github.com/shandysiswandi/mfarelay/internal/pkg/instrument"
	"github.com/shandysiswandi/mfarelay/internal/pkg/jwt"
	"github.com/shandysiswandi/mfarelay/internal/pkg/mfa"
	"github.com/shandysiswandi/mfarelay/internal/pkg/otp"
	"github.com/shandysiswandi/mfarelay/internal/pkg/router"
	"github.com/shandysiswandi/mfarelay/internal/pkg/uid"
	"github.com/shandysiswandi/mfarelay/internal/pkg/validator"
)

const (
	DriverAuth0   = "auth0"
	DriverSandbox = "sandbox"

	sandboxIssuer = "mfarelay-sandbox"
)

var (
	ErrUnknownDriver      = errors.New("enrollment: unknown provider driver")
	ErrMissingAuth0Config = errors.New("enrollment: auth0.client_id, auth0.client_secret and auth0.domain are required")
)

type Dependency struct {
	Ctx             context.Context            `validate:"required"`
	Goroutine       *goroutine.Manager         `validate:"required"`
	Router          *router.Router             `validate:"required"`
	Config          config.Config              `validate:"required"`
	Instrument      instrument.Instrumentation `validate:"required"`
	Validator       validator.Validator        `validate:"required"`
	Clock           clock.Clocker              `validate:"required"`
	UUID            uid.StringID               `validate:"required"`
	Totp            otp.OTP                    `validate:"required"`
	MFARecoveryCode mfa.RecoveryCodeGenerator  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("provider.driver")))

	uc := usecase.Dependency{
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	}

	switch driver {
	case DriverAuth0:
		client, err := newAuth0(dep)
		if err != nil {
			return err
		}
		uc.Provider = client

	case DriverSandbox:
		provider, err := newSandbox(dep)
		if err != nil {
			return err
		}
		uc.Provider = provider
		interval := dep.Config.GetSecond("provider.sandbox.sweep_interval_seconds")
		dep.Goroutine.Go(dep.Ctx, "sandbox-janitor", func(ctx context.Context) error {
			return provider.RunJanitor(ctx, interval)
		})
		slog.Warn("enrollment is using the in-process sandbox provider, do not use in production")

	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, usecase.New(uc))

	return nil
}

func newAuth0(dep Dependency) (*auth0.Client, error) {
	cfg := auth0.Config{
		Domain:       dep.Config.GetString("auth0.domain"),
		ClientID:     dep.Config.GetString("auth0.client_id"),
		ClientSecret: dep.Config.GetString("auth0.client_secret"),
		Timeout:      dep.Config.GetSecond("auth0.timeout_seconds"),
	}
	if strings.TrimSpace(cfg.Domain) == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingAuth0Config
	}

	return auth0.NewClient(cfg, dep.Instrument)
}

func newSandbox(dep Dependency) (*sandbox.Provider, error) {
	key := []byte(dep.Config.GetString("provider.sandbox.signing_key"))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}

	signer, err := jwt.NewHS256(jwt.Config{
		Secret: key,
		Issuer: sandboxIssuer,
		TTL:    dep.Config.GetSecond("provider.sandbox.token_ttl_seconds"),
		Clock:  dep.Clock,
		UUID:   dep.UUID,
	})
	if err != nil {
		return nil, err
	}

	return sandbox.New(sandbox.Dependency{
		TOTP:         dep.Totp,
		RecoveryCode: dep.MFARecoveryCode,
		UUID:         dep.UUID,
		Clock:        dep.Clock,
		Signer:       signer,
		TTL:          dep.Config.GetSecond("provider.sandbox.ttl_seconds"),
	}), nil
}
