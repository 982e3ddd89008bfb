package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/pkg/clock"
	"github.com/shandysiswandi/mfarelay/internal/pkg/jwt"
	"github.com/shandysiswandi/mfarelay/internal/pkg/mfa"
	"github.com/shandysiswandi/mfarelay/internal/pkg/otp"
	"github.com/shandysiswandi/mfarelay/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signingKey = "0123456789abcdef0123456789abcdef"

type fixture struct {
	provider *Provider
	clock    *clock.Manual
	totp     *otp.TOTP
	signer   *jwt.Signer
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	uuid := uid.NewUUID()
	totp := otp.NewTOTP(otp.Config{Issuer: "mfarelay-sandbox"})

	signer, err := jwt.NewHS256(jwt.Config{
		Secret: []byte(signingKey),
		Issuer: "mfarelay-sandbox",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uuid,
	})
	require.NoError(t, err)

	return fixture{
		provider: New(Dependency{
			TOTP:         totp,
			RecoveryCode: mfa.NewRecoveryCode(0),
			UUID:         uuid,
			Clock:        clk,
			Signer:       signer,
			TTL:          time.Minute,
		}),
		clock:  clk,
		totp:   totp,
		signer: signer,
	}
}

func requireInvalidGrant(t *testing.T, err error) {
	t.Helper()

	var uerr *entity.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, entity.ErrorCodeInvalidGrant, uerr.Code)
	assert.Equal(t, http.StatusForbidden, uerr.StatusCode)
	assert.Contains(t, string(uerr.Body), `"error":"invalid_grant"`)
}

func TestProvider_EnrollmentRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assoc, err := f.provider.Associate(ctx, "Bearer opaque")
	require.NoError(t, err)
	assert.NotEmpty(t, assoc.Secret)
	assert.NotEmpty(t, assoc.ContinuationToken)
	assert.Len(t, assoc.RecoveryCodes, mfa.DefaultRecoveryCodeCount)
	assert.JSONEq(t, `"otp"`, string(assoc.Extra["authenticator_type"]))
	assert.Contains(t, string(assoc.Extra["barcode_uri"]), "otpauth://totp/")
	assert.Equal(t, 1, f.provider.Pending())

	code, err := f.totp.GenerateCode(assoc.Secret, f.clock.Now())
	require.NoError(t, err)

	grant, err := f.provider.ExchangeOTP(ctx, entity.Confirmation{OTP: code, ContinuationToken: assoc.ContinuationToken})
	require.NoError(t, err)

	var tokens struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(grant.Tokens, &tokens))
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, 3600, tokens.ExpiresIn)

	sub, err := f.signer.Verify(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, DefaultSubject, sub)

	sub, err = f.signer.Verify(tokens.IDToken)
	require.NoError(t, err)
	assert.Equal(t, DefaultSubject, sub)

	// consumed
	assert.Zero(t, f.provider.Pending())
	_, err = f.provider.ExchangeOTP(ctx, entity.Confirmation{OTP: code, ContinuationToken: assoc.ContinuationToken})
	requireInvalidGrant(t, err)
}

func TestProvider_SubjectFromJWTCredential(t *testing.T) {
	f := newFixture(t)

	userToken, err := f.signer.Sign("auth0|user-42", nil)
	require.NoError(t, err)

	assoc, err := f.provider.Associate(context.Background(), "Bearer "+userToken)
	require.NoError(t, err)
	assert.Contains(t, string(assoc.Extra["barcode_uri"]), "user-42")

	code, err := f.totp.GenerateCode(assoc.Secret, f.clock.Now())
	require.NoError(t, err)

	grant, err := f.provider.ExchangeOTP(context.Background(), entity.Confirmation{OTP: code, ContinuationToken: assoc.ContinuationToken})
	require.NoError(t, err)

	var tokens map[string]any
	require.NoError(t, json.Unmarshal(grant.Tokens, &tokens))
	sub, err := f.signer.Verify(tokens["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "auth0|user-42", sub)
}

func TestProvider_WrongCodeKeepsEnrollment(t *testing.T) {
	f := newFixture(t)

	assoc, err := f.provider.Associate(context.Background(), "Bearer opaque")
	require.NoError(t, err)

	code, err := f.totp.GenerateCode(assoc.Secret, f.clock.Now())
	require.NoError(t, err)
	wrong := strings.Repeat("0", len(code))
	if wrong == code {
		wrong = strings.Repeat("1", len(code))
	}

	_, err = f.provider.ExchangeOTP(context.Background(), entity.Confirmation{OTP: wrong, ContinuationToken: assoc.ContinuationToken})
	requireInvalidGrant(t, err)
	assert.Equal(t, 1, f.provider.Pending())

	_, err = f.provider.ExchangeOTP(context.Background(), entity.Confirmation{OTP: code, ContinuationToken: assoc.ContinuationToken})
	assert.NoError(t, err)
}

func TestProvider_Expiry(t *testing.T) {
	f := newFixture(t)

	assoc, err := f.provider.Associate(context.Background(), "Bearer opaque")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	assert.Zero(t, f.provider.Pending())

	code, err := f.totp.GenerateCode(assoc.Secret, f.clock.Now())
	require.NoError(t, err)

	_, err = f.provider.ExchangeOTP(context.Background(), entity.Confirmation{OTP: code, ContinuationToken: assoc.ContinuationToken})
	requireInvalidGrant(t, err)
}

func TestProvider_UnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.provider.ExchangeOTP(context.Background(), entity.Confirmation{OTP: "123456", ContinuationToken: "nope"})
	requireInvalidGrant(t, err)
}

func TestProvider_RunJanitor(t *testing.T) {
	f := newFixture(t)

	_, err := f.provider.Associate(context.Background(), "Bearer opaque")
	require.NoError(t, err)
	f.clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.provider.RunJanitor(ctx, time.Millisecond) }()

	assert.Eventually(t, func() bool {
		f.provider.mu.Lock()
		defer f.provider.mu.Unlock()
		return len(f.provider.pending) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
