package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "server with details", err: NewServerWithDetails(nil, "upstream failed", map[string]any{"error": "x"}), want: http.StatusInternalServerError},
		{name: "unauthorized", err: NewBusiness("no token", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "invalid input", err: NewInvalidInput(nil, "missing"), want: http.StatusBadRequest},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "unavailable", err: NewBusiness("maintenance", CodeUnavailable), want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewServerWithDetails(cause, "failed to initiate enrollment", map[string]any{"error": "access_denied"})

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "failed to initiate enrollment", gerr.Msg())
	assert.Equal(t, map[string]any{"error": "access_denied"}, gerr.Details())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}

func TestError_Is(t *testing.T) {
	sentinel := NewBusiness("missing user access token", CodeUnauthorized)
	other := NewBusiness("missing user access token", CodeUnauthorized)

	assert.ErrorIs(t, other, sentinel)
	assert.NotErrorIs(t, NewBusiness("different", CodeUnauthorized), sentinel)
	assert.NotErrorIs(t, errors.New("missing user access token"), sentinel)
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "missing parameters", "otp", "otp is a required field", "dangling")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, map[string]string{"otp": "otp is a required field"}, gerr.Fields())
	assert.Equal(t, TypeValidation, gerr.Type())
	assert.Equal(t, CodeInvalidInput, gerr.Code())
}
