package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/pkg/goerror"
	"github.com/shandysiswandi/mfarelay/internal/pkg/instrument"
	"github.com/shandysiswandi/mfarelay/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	assoc *entity.Association
	grant *entity.Grant
	err   error

	associateCalls []string
	exchangeCalls  []entity.Confirmation
}

func (f *fakeProvider) Associate(_ context.Context, credential string) (*entity.Association, error) {
	f.associateCalls = append(f.associateCalls, credential)
	return f.assoc, f.err
}

func (f *fakeProvider) ExchangeOTP(_ context.Context, in entity.Confirmation) (*entity.Grant, error) {
	f.exchangeCalls = append(f.exchangeCalls, in)
	return f.grant, f.err
}

func newUsecase(t *testing.T, p *fakeProvider) *Usecase {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return New(Dependency{Provider: p, Validator: v, Instrument: instrument.NewNoop()})
}

func requireGoError(t *testing.T, err error) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	return gerr
}

func TestUsecase_InitiateEnrollment(t *testing.T) {
	t.Run("missing credential makes no upstream call", func(t *testing.T) {
		for _, credential := range []string{"", "   "} {
			p := &fakeProvider{}
			_, err := newUsecase(t, p).InitiateEnrollment(context.Background(), InitiateEnrollmentInput{Credential: credential})

			require.ErrorIs(t, err, entity.ErrMissingCredential)
			assert.Equal(t, http.StatusUnauthorized, requireGoError(t, err).StatusCode())
			assert.Empty(t, p.associateCalls)
		}
	})

	t.Run("credential is forwarded unmodified", func(t *testing.T) {
		want := &entity.Association{Secret: "S", ContinuationToken: "O", RecoveryCodes: []string{"r1", "r2"}}
		p := &fakeProvider{assoc: want}

		got, err := newUsecase(t, p).InitiateEnrollment(context.Background(), InitiateEnrollmentInput{Credential: "Bearer  tok "})
		require.NoError(t, err)
		assert.Same(t, want, got)
		assert.Equal(t, []string{"Bearer  tok "}, p.associateCalls)
	})

	t.Run("upstream failure carries details", func(t *testing.T) {
		p := &fakeProvider{err: &entity.UpstreamError{
			Op:         entity.OpAssociate,
			StatusCode: http.StatusUnauthorized,
			Code:       "access_denied",
			Body:       []byte(`{"error":"access_denied"}`),
		}}

		_, err := newUsecase(t, p).InitiateEnrollment(context.Background(), InitiateEnrollmentInput{Credential: "Bearer x"})
		gerr := requireGoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, gerr.StatusCode())
		assert.Equal(t, entity.MsgInitiateFailed, gerr.Msg())
		assert.Equal(t, json.RawMessage(`{"error":"access_denied"}`), gerr.Details())
	})

	t.Run("unexpected failure has no details", func(t *testing.T) {
		p := &fakeProvider{err: errors.New("boom")}

		_, err := newUsecase(t, p).InitiateEnrollment(context.Background(), InitiateEnrollmentInput{Credential: "Bearer x"})
		gerr := requireGoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, gerr.StatusCode())
		assert.Nil(t, gerr.Details())
	})
}

func TestUsecase_ConfirmEnrollment(t *testing.T) {
	t.Run("missing parameters make no upstream call", func(t *testing.T) {
		inputs := []ConfirmEnrollmentInput{
			{},
			{OTP: "123456"},
			{MFAToken: "tok"},
			{OTP: " ", MFAToken: "tok"},
		}
		for _, in := range inputs {
			p := &fakeProvider{}
			_, err := newUsecase(t, p).ConfirmEnrollment(context.Background(), in)

			gerr := requireGoError(t, err)
			assert.Equal(t, http.StatusBadRequest, gerr.StatusCode())
			assert.Equal(t, entity.MsgMissingParameters, gerr.Msg())
			assert.Empty(t, p.exchangeCalls)
		}
	})

	t.Run("success relays grant", func(t *testing.T) {
		want := &entity.Grant{Tokens: json.RawMessage(`{"access_token":"A","id_token":"B"}`)}
		p := &fakeProvider{grant: want}

		got, err := newUsecase(t, p).ConfirmEnrollment(context.Background(), ConfirmEnrollmentInput{OTP: "123456", MFAToken: "tok"})
		require.NoError(t, err)
		assert.Same(t, want, got)
		assert.Equal(t, []entity.Confirmation{{OTP: "123456", ContinuationToken: "tok"}}, p.exchangeCalls)
	})

	t.Run("invalid grant maps to bad request", func(t *testing.T) {
		p := &fakeProvider{err: &entity.UpstreamError{
			Op:         entity.OpExchangeOTP,
			StatusCode: http.StatusForbidden,
			Code:       entity.ErrorCodeInvalidGrant,
			Body:       []byte(`{"error":"invalid_grant","error_description":"Invalid otp_code."}`),
		}}

		_, err := newUsecase(t, p).ConfirmEnrollment(context.Background(), ConfirmEnrollmentInput{OTP: "000000", MFAToken: "tok"})
		require.ErrorIs(t, err, entity.ErrInvalidOrExpiredOTP)
		assert.Equal(t, http.StatusBadRequest, requireGoError(t, err).StatusCode())
	})

	t.Run("other upstream errors are server errors", func(t *testing.T) {
		p := &fakeProvider{err: &entity.UpstreamError{
			Op:         entity.OpExchangeOTP,
			StatusCode: http.StatusForbidden,
			Code:       "unauthorized_client",
			Body:       []byte(`{"error":"unauthorized_client"}`),
		}}

		_, err := newUsecase(t, p).ConfirmEnrollment(context.Background(), ConfirmEnrollmentInput{OTP: "000000", MFAToken: "tok"})
		gerr := requireGoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, gerr.StatusCode())
		assert.Equal(t, entity.MsgConfirmFailed, gerr.Msg())
		assert.Equal(t, json.RawMessage(`{"error":"unauthorized_client"}`), gerr.Details())
	})
}
