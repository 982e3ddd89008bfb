package app

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/cors"
	"github.com/samber/lo"
	"github.com/shandysiswandi/mfarelay/internal/pkg/clock"
	"github.com/shandysiswandi/mfarelay/internal/pkg/config"
	"github.com/shandysiswandi/mfarelay/internal/pkg/goroutine"
	"github.com/shandysiswandi/mfarelay/internal/pkg/instrument"
	"github.com/shandysiswandi/mfarelay/internal/pkg/mfa"
	"github.com/shandysiswandi/mfarelay/internal/pkg/otp"
	"github.com/shandysiswandi/mfarelay/internal/pkg/router"
	"github.com/shandysiswandi/mfarelay/internal/pkg/uid"
	"github.com/shandysiswandi/mfarelay/internal/pkg/validator"
)

func (a *App) initConfig() {
	cfg, err := config.NewViper(os.Getenv("CONFIG_PATH"), defaults)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	a.totp = otp.NewTOTP(otp.Config{Issuer: a.config.GetString("provider.sandbox.totp_issuer")})
	a.mfaRecoveryCode = mfa.NewRecoveryCode(a.config.GetInt("provider.sandbox.recovery_code_count"))
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	origins := a.config.GetArray("app.server.cors")
	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{router.HeaderCorrelationID},
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: !isWildcard(origins),
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              net.JoinHostPort(a.config.GetString("app.host"), strconv.Itoa(a.config.GetInt("port"))),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.idle_timeout_seconds"),
	}
}

func isWildcard(origins []string) bool {
	return len(origins) == 0 || lo.Contains(origins, "*")
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
