package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/mfarelay/internal/enrollment"
)

func (a *App) initModules() {
	if err := enrollment.New(enrollment.Dependency{
		Ctx:             a.ctx,
		Goroutine:       a.goroutine,
		Router:          a.router,
		Config:          a.config,
		Instrument:      a.ins,
		Validator:       a.validator,
		Clock:           a.clock,
		UUID:            a.uuid,
		Totp:            a.totp,
		MFARecoveryCode: a.mfaRecoveryCode,
	}); err != nil {
		slog.Error("failed to init module enrollment", "error", err)
		os.Exit(1)
	}
}
