package inbound

import (
	"encoding/json"
)

const (
	healthBody       = "TODO OK!"
	confirmedMessage = "enrollment confirmed"
)

// InitiateEnrollmentResponse is the provider association with oob_code
// exposed as mfa_token. Every other provider member is passed through, and a
// nil member is one the provider did not send.
type InitiateEnrollmentResponse struct {
	Secret        json.RawMessage
	MFAToken      json.RawMessage
	RecoveryCodes json.RawMessage
	Extra         map[string]json.RawMessage
}

func (r InitiateEnrollmentResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}

	if r.Secret != nil {
		out["secret"] = r.Secret
	}
	if r.MFAToken != nil {
		out["mfa_token"] = r.MFAToken
	}
	if r.RecoveryCodes != nil {
		out["recovery_codes"] = r.RecoveryCodes
	}

	return json.Marshal(out)
}

type ConfirmEnrollmentRequest struct {
	OTP      OTPCode `json:"otp"`
	MFAToken string  `json:"mfa_token"`
}

// OTPCode accepts the code as a JSON string or a JSON number. A number keeps
// its literal text.
type OTPCode string

func (c *OTPCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = OTPCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = OTPCode(n.String())
	return nil
}

type ConfirmEnrollmentResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Tokens  json.RawMessage `json:"tokens"`
}
