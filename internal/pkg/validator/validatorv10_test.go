package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type confirmPayload struct {
	OTP      string `json:"otp" validate:"notblank"`
	MFAToken string `json:"mfa_token" validate:"notblank"`
}

type dependency struct {
	ProviderName string `validate:"required"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(confirmPayload{OTP: "123456", MFAToken: "tok"}))
	})

	t.Run("missing and blank fields use wire names", func(t *testing.T) {
		err := v.Validate(confirmPayload{OTP: "   "})

		var verr V10ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, map[string]string{
			"otp":       "otp is a required field",
			"mfa_token": "mfa_token is a required field",
		}, verr.Values())
		assert.Contains(t, verr.Error(), "mfa_token")
	})

	t.Run("struct without json tags falls back to snake case", func(t *testing.T) {
		err := v.Validate(dependency{})

		var verr V10ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Values(), "provider_name")
	})

	t.Run("non struct input", func(t *testing.T) {
		err := v.Validate("not a struct")
		require.Error(t, err)

		var verr V10ValidationError
		assert.NotErrorAs(t, err, &verr)
	})
}

func TestV10ValidationError_Empty(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
}
