package enrollment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/mfarelay/internal/pkg/clock"
	"github.com/shandysiswandi/mfarelay/internal/pkg/config"
	"github.com/shandysiswandi/mfarelay/internal/pkg/goroutine"
	"github.com/shandysiswandi/mfarelay/internal/pkg/instrument"
	"github.com/shandysiswandi/mfarelay/internal/pkg/mfa"
	"github.com/shandysiswandi/mfarelay/internal/pkg/otp"
	"github.com/shandysiswandi/mfarelay/internal/pkg/router"
	"github.com/shandysiswandi/mfarelay/internal/pkg/uid"
	"github.com/shandysiswandi/mfarelay/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDependency(t *testing.T, yaml string) Dependency {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml), nil)
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	ins := instrument.NewNoop()

	ctx, cancel := context.WithCancel(context.Background())
	manager := goroutine.NewManager(1)
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, manager.Wait())
	})

	return Dependency{
		Ctx:             ctx,
		Goroutine:       manager,
		Router:          router.NewRouter(router.Config{Config: cfg, Instrument: ins}),
		Config:          cfg,
		Instrument:      ins,
		Validator:       v,
		Clock:           clock.NewManual(time.Now()),
		UUID:            uid.NewUUID(),
		Totp:            otp.NewTOTP(otp.Config{Issuer: "mfarelay"}),
		MFARecoveryCode: mfa.NewRecoveryCode(0),
	}
}

func TestNew(t *testing.T) {
	t.Run("missing dependency", func(t *testing.T) {
		dep := newDependency(t, "provider:\n  driver: sandbox\n")
		dep.Clock = nil
		assert.Error(t, New(dep))
	})

	t.Run("unknown driver", func(t *testing.T) {
		assert.ErrorIs(t, New(newDependency(t, "provider:\n  driver: okta\n")), ErrUnknownDriver)
	})

	t.Run("auth0 requires credentials", func(t *testing.T) {
		err := New(newDependency(t, "provider:\n  driver: auth0\nauth0:\n  domain: tenant.example.com\n"))
		assert.ErrorIs(t, err, ErrMissingAuth0Config)
	})

	t.Run("auth0 registers routes", func(t *testing.T) {
		dep := newDependency(t, "provider:\n  driver: auth0\nauth0:\n  domain: tenant.example.com\n  client_id: id\n  client_secret: secret\n")
		require.NoError(t, New(dep))

		rec := httptest.NewRecorder()
		dep.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/initiate-enrollment", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("sandbox short signing key", func(t *testing.T) {
		err := New(newDependency(t, "provider:\n  driver: sandbox\n  sandbox:\n    signing_key: short\n"))
		assert.Error(t, err)
	})

	t.Run("sandbox enrollment", func(t *testing.T) {
		dep := newDependency(t, "provider:\n  driver: SANDBOX\n")
		require.NoError(t, New(dep))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/initiate-enrollment", nil)
		req.Header.Set("Authorization", "Bearer anything")
		dep.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"mfa_token"`)
		assert.Contains(t, rec.Body.String(), `"recovery_codes"`)

		rec = httptest.NewRecorder()
		dep.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/enroll-totp-Auth0",
			strings.NewReader(`{"otp":"123456","mfa_token":"unknown"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"the OTP code is invalid or expired"}`, rec.Body.String())
	})
}
